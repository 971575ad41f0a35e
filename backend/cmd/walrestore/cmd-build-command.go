package main

import (
	"fmt"

	"github.com/nogproject/walrestore/backend/internal/restorecmd"
)

func cmdBuildCommand(args map[string]interface{}, cfg *Config) {
	restoreCommand := restoreCommandMust(args, cfg)

	// Absent options are nil, which `Build()` treats like empty values.
	optional := func(k string) *string {
		if v, ok := args[k].(string); ok {
			return &v
		}
		return nil
	}
	b := restorecmd.FromNullable(
		optional("--xlog-path"),
		optional("--xlog-fname"),
		optional("--last-restart-point"),
	)

	cmd, err := restorecmd.Build(restoreCommand, b)
	if err != nil {
		lg.Fatalw("Failed to build restore command.", "err", err)
	}
	fmt.Fprintln(stdout, cmd)
}
