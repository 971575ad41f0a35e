// Package `execx` locates external programs during startup.
//
// `LookTool()` resolves a program in `PATH` and runs it once with check
// arguments to confirm that it is the expected program.  `walrestore` uses it
// to find the shell that runs restore commands.
package execx

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrUnexpectedOutput = errors.New("unexpected check output")

// `ToolSpec` tells `LookTool()` how to find and check a tool: run `Program`
// with `CheckArgs` and expect `CheckText` in its stdout.
type ToolSpec struct {
	Program   string
	CheckArgs []string
	CheckText string
}

type Tool struct {
	Path string
}

func LookTool(s ToolSpec) (*Tool, error) {
	path, err := exec.LookPath(s.Program)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to find path of `%s`: %w", s.Program, err,
		)
	}

	o, err := exec.Command(path, s.CheckArgs...).Output()
	if err != nil {
		return nil, fmt.Errorf(
			"failed to execute `%s %s`: %w", path,
			strings.Join(s.CheckArgs, " "), err,
		)
	}
	if !strings.Contains(string(o), s.CheckText) {
		return nil, fmt.Errorf(
			"`%s %s` did not print `%s`: %w", s.Program,
			strings.Join(s.CheckArgs, " "), s.CheckText,
			ErrUnexpectedOutput,
		)
	}

	return &Tool{Path: path}, nil
}

// `MustLookTool()` is like `LookTool()` but panics on error.  Use it only for
// package-level tool variables in commands.
func MustLookTool(s ToolSpec) *Tool {
	t, err := LookTool(s)
	if err != nil {
		panic(fmt.Sprintf("%v", err))
	}
	return t
}
