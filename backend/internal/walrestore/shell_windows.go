package walrestore

import (
	"fmt"
	"os/exec"
	"syscall"

	"github.com/nogproject/walrestore/backend/pkg/execx"
)

var shellSpec = execx.ToolSpec{
	Program:   "cmd.exe",
	CheckArgs: []string{"/C", "echo walrestore-shell-ok"},
	CheckText: "walrestore-shell-ok",
}

// `cmd.exe` does not use the standard argument quoting.  The command line is
// passed verbatim, with `/S` so that only the outer quotes are stripped.
func shellCommand(sh *execx.Tool, command string) *exec.Cmd {
	cmd := exec.Command(sh.Path)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: fmt.Sprintf(`"%s" /S /C "%s"`, sh.Path, command),
	}
	return cmd
}
