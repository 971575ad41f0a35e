package walrestore

import (
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/nogproject/walrestore/backend/pkg/execx"
)

// `ExitStatus` is how a restore command terminated.  `Signal` is non-nil if
// the command was terminated by a signal, in which case `Code` is -1.
type ExitStatus struct {
	Code   int
	Signal os.Signal
}

// `Runner` executes a rendered restore command and waits for it to complete.
// `Run()` returns an error only if the command could not be started.
type Runner interface {
	Run(command string) (ExitStatus, error)
}

// `ShellRunner` passes the command string unchanged to the platform shell:
// `sh -c` on Unix, `cmd.exe /S /C` on Windows.  Stdin is not connected.  The
// command's stdout and stderr are written to `Output`, which defaults to
// `os.Stderr`, so that they do not mix with machine-readable stdout.
type ShellRunner struct {
	Output io.Writer
	shell  *execx.Tool
}

func NewShellRunner() (*ShellRunner, error) {
	sh, err := execx.LookTool(shellSpec)
	if err != nil {
		return nil, err
	}
	return &ShellRunner{shell: sh}, nil
}

func (r *ShellRunner) Run(command string) (ExitStatus, error) {
	out := r.Output
	if out == nil {
		out = os.Stderr
	}

	cmd := shellCommand(r.shell, command)
	cmd.Stdin = nil
	cmd.Stdout = out
	cmd.Stderr = out
	err := cmd.Run()
	if err == nil {
		return ExitStatus{}, nil
	}
	exitError, ok := err.(*exec.ExitError)
	if !ok {
		return ExitStatus{}, err
	}
	return exitStatus(exitError.ProcessState), nil
}

func exitStatus(ps *os.ProcessState) ExitStatus {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Code: -1, Signal: ws.Signal()}
	}
	return ExitStatus{Code: ps.ExitCode()}
}
