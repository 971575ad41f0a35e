// Package `restorecmd` builds restore commands from a `restore_command`
// template.
//
// The supported placeholders are `%p`, which is replaced by the path of the
// file to restore, `%f`, which is replaced by the file name, and `%r`, which
// is replaced by the file name of the last restart point.  `%%` is a literal
// `%`.  Other `%` sequences are copied unchanged.
//
// A template references a placeholder if it contains its token anywhere, even
// after a `%`, so `%%p` references `%p` and renders as `%` followed by the
// path.  The template is scanned once from left to right.  `%%` is collapsed
// only in the template text between placeholders.  Substituted values are
// never scanned again, so a value that contains `%f` or `%%` is inserted
// literally.
package restorecmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nogproject/walrestore/backend/pkg/nativepath"
)

type Placeholder byte

const (
	PlaceholderPath             Placeholder = 'p'
	PlaceholderFname            Placeholder = 'f'
	PlaceholderLastRestartPoint Placeholder = 'r'
)

func (p Placeholder) String() string {
	return "%" + string(p)
}

// `ErrUnsatisfied` matches every `*UnsatisfiedError` with `errors.Is()`.
var ErrUnsatisfied = errors.New("placeholder without value")

// `UnsatisfiedError` tells which placeholder the template references without
// a value to substitute.
type UnsatisfiedError struct {
	Placeholder Placeholder
}

func (err *UnsatisfiedError) Error() string {
	return fmt.Sprintf(
		"restore_command uses %s, but no value is available",
		err.Placeholder,
	)
}

func (err *UnsatisfiedError) Is(target error) bool {
	return target == ErrUnsatisfied
}

// `Bindings` contains the placeholder values.  An empty string means that
// the value is absent.
type Bindings struct {
	XLogPath              string
	XLogFname             string
	LastRestartPointFname string
}

// `FromNullable()` converts possibly nil arguments, as received from a host
// that distinguishes null from empty, to `Bindings`.  Null and empty are
// equivalent for `Build()`.
func FromNullable(xlogPath, xlogFname, lastRestartPointFname *string) Bindings {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return Bindings{
		XLogPath:              deref(xlogPath),
		XLogFname:             deref(xlogFname),
		LastRestartPointFname: deref(lastRestartPointFname),
	}
}

// `Placeholders` is the set of placeholders that a template references.
type Placeholders struct {
	Path             bool
	Fname            bool
	LastRestartPoint bool
}

func (ps Placeholders) Has(p Placeholder) bool {
	switch p {
	case PlaceholderPath:
		return ps.Path
	case PlaceholderFname:
		return ps.Fname
	case PlaceholderLastRestartPoint:
		return ps.LastRestartPoint
	default:
		return false
	}
}

func (ps Placeholders) String() string {
	var names []string
	for _, p := range []Placeholder{
		PlaceholderPath,
		PlaceholderFname,
		PlaceholderLastRestartPoint,
	} {
		if ps.Has(p) {
			names = append(names, p.String())
		}
	}
	return strings.Join(names, " ")
}

// `References()` returns the placeholders whose token occurs in `template`.
func References(template string) Placeholders {
	return Placeholders{
		Path:             strings.Contains(template, PlaceholderPath.String()),
		Fname:            strings.Contains(template, PlaceholderFname.String()),
		LastRestartPoint: strings.Contains(template, PlaceholderLastRestartPoint.String()),
	}
}

// `Build()` returns the restore command for `template` with the placeholders
// replaced by `b`.  `b.XLogPath` is converted to a native path first.  If the
// template references a placeholder whose value is empty, `Build()` returns
// an `*UnsatisfiedError` for the first such placeholder in the order `%p`,
// `%f`, `%r`.
func Build(template string, b Bindings) (string, error) {
	xlogPath := nativepath.MakeNativePath(b.XLogPath)

	refs := References(template)
	switch {
	case refs.Path && xlogPath == "":
		return "", &UnsatisfiedError{PlaceholderPath}
	case refs.Fname && b.XLogFname == "":
		return "", &UnsatisfiedError{PlaceholderFname}
	case refs.LastRestartPoint && b.LastRestartPointFname == "":
		return "", &UnsatisfiedError{PlaceholderLastRestartPoint}
	}

	var cmd strings.Builder
	cmd.Grow(len(template) + len(xlogPath) + len(b.XLogFname))
	scan(template, func(lit string) {
		cmd.WriteString(lit)
	}, func(p Placeholder) {
		switch p {
		case PlaceholderPath:
			cmd.WriteString(xlogPath)
		case PlaceholderFname:
			cmd.WriteString(b.XLogFname)
		case PlaceholderLastRestartPoint:
			cmd.WriteString(b.LastRestartPointFname)
		}
	})
	return cmd.String(), nil
}

// `scan()` splits `template` into literal runs and placeholders.  The first
// `%p`, `%f`, or `%r` token at or after the current position is a
// placeholder, so the `%%p` in `a%%p` is `%` followed by `%p`.  `%%` in
// literal runs is reported as `%`.
func scan(template string, lit func(string), ph func(Placeholder)) {
	unescape := func(s string) string {
		return strings.Replace(s, "%%", "%", -1)
	}
	start := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		switch c := template[i+1]; c {
		case 'p', 'f', 'r':
			lit(unescape(template[start:i]))
			ph(Placeholder(c))
			i++
			start = i + 1
		}
	}
	lit(unescape(template[start:]))
}
