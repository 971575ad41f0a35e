//go:build !windows
// +build !windows

package walrestore

import (
	"os/exec"

	"github.com/nogproject/walrestore/backend/pkg/execx"
)

var shellSpec = execx.ToolSpec{
	Program:   "sh",
	CheckArgs: []string{"-c", "echo walrestore-shell-ok"},
	CheckText: "walrestore-shell-ok",
}

func shellCommand(sh *execx.Tool, command string) *exec.Cmd {
	return exec.Command(sh.Path, "-c", command)
}
