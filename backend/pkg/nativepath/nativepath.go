// Package `nativepath` converts slash paths into the form that the platform
// shell expects.
//
// On Windows, `COPY` is an internal `CMD.EXE` command that does not process
// forward slashes in its first argument like external commands do.  Quoting
// the argument does not help.  Paths that are substituted into shell commands
// therefore use backslashes on Windows.
package nativepath

import (
	"runtime"
	"strings"
)

// `MakeNativePath()` changes `/` to `\` on Windows.  It returns `path`
// unchanged on all other platforms.
func MakeNativePath(path string) string {
	return makeNativePath(path, runtime.GOOS == "windows")
}

func makeNativePath(path string, windows bool) string {
	if !windows {
		return path
	}
	return strings.Replace(path, "/", `\`, -1)
}
