// Package `walrestore` restores archived WAL segments with a
// `restore_command`.
//
// `Restore()` renders the command for the segment, runs it, and verifies
// that the restored file has exactly the expected size before it returns the
// open file.  The command is awaited without timeout.  Each call is
// independent.
//
// `MustRestore()` is the variant for callers that cannot continue without
// the segment.  It terminates the process via `Logger.Fatalw()` on any error.
package walrestore

import (
	"errors"
	"fmt"
	"os"

	"github.com/nogproject/walrestore/backend/internal/restorecmd"
	"github.com/nogproject/walrestore/backend/pkg/ulid"
)

// `XLogDir` is the WAL directory relative to the data directory, which is
// the working directory of the process.
const XLogDir = "pg_wal"

type Logger interface {
	Infow(msg string, kv ...interface{})
	Fatalw(msg string, kv ...interface{})
}

type Config struct {
	Runner Runner
}

type Restorer struct {
	lg     Logger
	runner Runner
}

func New(lg Logger, cfg *Config) *Restorer {
	return &Restorer{
		lg:     lg,
		runner: cfg.Runner,
	}
}

// `SegmentPath()` returns the path at which the restore command must place
// segment `xlogFname` of `subdir`.
func SegmentPath(subdir, xlogFname string) string {
	return fmt.Sprintf("%s/%s/%s", XLogDir, subdir, xlogFname)
}

// `Restore()` restores `xlogFname` to `SegmentPath(subdir, xlogFname)` and
// returns the open file.  The caller must close it.
//
// `%r` is never bound.  A `restoreCommand` that uses `%r` always fails with
// `KindUnsatisfiable`.
func (r *Restorer) Restore(
	subdir, xlogFname string,
	expectedSize uint64,
	restoreCommand string,
) (*os.File, error) {
	xlogPath := SegmentPath(subdir, xlogFname)

	cmd, err := restorecmd.Build(restoreCommand, restorecmd.Bindings{
		XLogPath:  xlogPath,
		XLogFname: xlogFname,
	})
	if err != nil {
		return nil, &Error{
			Kind: KindUnsatisfiable,
			Path: xlogPath,
			Err:  err,
		}
	}

	attempt := ulid.MustNew()
	r.lg.Infow(
		"Started restore command.",
		"attempt", attempt.String(),
		"path", xlogPath,
		"command", cmd,
	)

	status, err := r.runner.Run(cmd)
	switch {
	case err != nil:
		return nil, &Error{
			Kind: KindCommandLaunch,
			Path: xlogPath,
			Err:  err,
		}
	case status.Signal != nil:
		return nil, &Error{
			Kind:     KindCommandSignaled,
			Path:     xlogPath,
			ExitCode: status.Code,
			Signal:   status.Signal,
		}
	case status.Code != 0:
		return nil, &Error{
			Kind:     KindCommandFailed,
			Path:     xlogPath,
			ExitCode: status.Code,
		}
	}

	inf, err := os.Stat(xlogPath)
	if err != nil {
		return nil, &Error{Kind: KindStat, Path: xlogPath, Err: err}
	}
	// Exact size.  A short file is a truncated segment, a longer one is
	// not a segment of this cluster.
	if size := uint64(inf.Size()); size != expectedSize {
		return nil, &Error{
			Kind: KindSizeMismatch,
			Path: xlogPath,
			Got:  size,
			Want: expectedSize,
		}
	}

	fp, err := os.Open(xlogPath)
	if err != nil {
		return nil, &Error{Kind: KindOpen, Path: xlogPath, Err: err}
	}

	r.lg.Infow(
		"Restored segment from archive.",
		"attempt", attempt.String(),
		"path", xlogPath,
		"size", expectedSize,
	)
	return fp, nil
}

// `MustRestore()` is like `Restore()` but logs errors with `Fatalw()`, which
// must not return.
func (r *Restorer) MustRestore(
	subdir, xlogFname string,
	expectedSize uint64,
	restoreCommand string,
) *os.File {
	fp, err := r.Restore(subdir, xlogFname, expectedSize, restoreCommand)
	if err == nil {
		return fp
	}

	kv := []interface{}{"kind", KindOf(err).String()}
	var rerr *Error
	if errors.As(err, &rerr) {
		kv = append(kv, "path", rerr.Path)
		if rerr.Err != nil {
			kv = append(kv, "err", rerr.Err)
		}
	}
	r.lg.Fatalw(err.Error(), kv...)
	return nil
}
