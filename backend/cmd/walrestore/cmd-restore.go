package main

import (
	"fmt"

	"github.com/nogproject/walrestore/backend/internal/walrestore"
	"github.com/nogproject/walrestore/backend/pkg/netx"
)

func cmdRestore(args map[string]interface{}, cfg *Config) {
	restoreCommand := restoreCommandMust(args, cfg)
	expectedSize := args["--expected-size"].(uint64)
	subdir := args["<subdir>"].(string)
	segment := args["<segment>"].(string)

	runner, err := walrestore.NewShellRunner()
	if err != nil {
		lg.Fatalw("Failed to find shell.", "err", err)
	}
	r := walrestore.New(lg, &walrestore.Config{Runner: runner})

	fp := r.MustRestore(subdir, segment, expectedSize, restoreCommand)
	defer func() { _ = fp.Close() }()

	if sock, ok := args["--fd-socket"].(string); ok {
		if err := netx.SendFdFile(sock, fp); err != nil {
			lg.Fatalw(
				"Failed to pass segment fd.",
				"socket", sock,
				"err", err,
			)
		}
		lg.Infow(
			"Passed segment fd.",
			"socket", sock,
			"path", fp.Name(),
		)
		return
	}

	fmt.Fprintf(stdout, "%s\t%d\n", fp.Name(), expectedSize)
}
