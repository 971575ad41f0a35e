package walrestore

import (
	"errors"
	"fmt"
	"os"

	"github.com/nogproject/walrestore/backend/internal/restorecmd"
)

// `Kind` tells at which step a restore failed.
type Kind int

const (
	KindUnspecified Kind = iota
	KindUnsatisfiable
	KindCommandLaunch
	KindCommandFailed
	KindCommandSignaled
	KindStat
	KindSizeMismatch
	KindOpen
)

func (k Kind) String() string {
	switch k {
	case KindUnsatisfiable:
		return "unsatisfiable"
	case KindCommandLaunch:
		return "command-launch"
	case KindCommandFailed:
		return "command-failed"
	case KindCommandSignaled:
		return "command-signaled"
	case KindStat:
		return "stat"
	case KindSizeMismatch:
		return "size-mismatch"
	case KindOpen:
		return "open"
	default:
		return "unspecified"
	}
}

// `Category` groups kinds into template, external command, and validation
// failures.
type Category int

const (
	CategoryUnspecified Category = iota
	CategoryTemplate
	CategoryCommand
	CategoryValidation
)

func (k Kind) Category() Category {
	switch k {
	case KindUnsatisfiable:
		return CategoryTemplate
	case KindCommandLaunch, KindCommandFailed, KindCommandSignaled:
		return CategoryCommand
	case KindStat, KindSizeMismatch, KindOpen:
		return CategoryValidation
	default:
		return CategoryUnspecified
	}
}

// `Error` describes a failed restore.  `Path` is the segment path.  `Got` and
// `Want` are the sizes for `KindSizeMismatch`.  `ExitCode` is set for
// `KindCommandFailed`, `Signal` for `KindCommandSignaled`.
type Error struct {
	Kind     Kind
	Path     string
	Got      uint64
	Want     uint64
	ExitCode int
	Signal   os.Signal
	Err      error
}

func (err *Error) Unwrap() error {
	return err.Err
}

func (err *Error) Error() string {
	switch err.Kind {
	case KindUnsatisfiable:
		var uerr *restorecmd.UnsatisfiedError
		if errors.As(err.Err, &uerr) {
			return fmt.Sprintf(
				"cannot use restore_command with %s placeholder",
				uerr.Placeholder,
			)
		}
		return fmt.Sprintf("cannot use restore_command: %v", err.Err)
	case KindCommandLaunch:
		return fmt.Sprintf("restore command failed: %v", err.Err)
	case KindCommandFailed:
		return fmt.Sprintf(
			"could not restore file \"%s\" from archive: "+
				"exit status %d",
			err.Path, err.ExitCode,
		)
	case KindCommandSignaled:
		return fmt.Sprintf(
			"restore command failed: terminated by signal %v",
			err.Signal,
		)
	case KindStat:
		return fmt.Sprintf(
			"could not stat file \"%s\": %v", err.Path, err.Err,
		)
	case KindSizeMismatch:
		return fmt.Sprintf(
			"unexpected file size for \"%s\": %d instead of %d",
			err.Path, err.Got, err.Want,
		)
	case KindOpen:
		return fmt.Sprintf(
			"could not open file \"%s\" restored from archive: %v",
			err.Path, err.Err,
		)
	default:
		return fmt.Sprintf("restore of \"%s\" failed: %v", err.Path, err.Err)
	}
}

// `KindOf()` returns the `Kind` of a restore error, or `KindUnspecified` if
// `err` is not an `*Error`.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindUnspecified
}
