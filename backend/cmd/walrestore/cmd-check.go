package main

import (
	"fmt"

	"github.com/nogproject/walrestore/backend/internal/restorecmd"
)

func cmdCheck(args map[string]interface{}, cfg *Config) {
	restoreCommand := restoreCommandMust(args, cfg)

	refs := restorecmd.References(restoreCommand)
	fmt.Fprintln(stdout, refs.String())
	if refs.LastRestartPoint {
		lg.Fatalw(
			"cannot use restore_command with %r placeholder",
			"placeholders", refs.String(),
		)
	}
	lg.Infow("Restore command is usable.", "placeholders", refs.String())
}
