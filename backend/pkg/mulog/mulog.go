// Package `mulog` provides a minimal Zap-Sugar-like logger with structured
// `Levelw(msg, kv...)` functions and no dependencies.
//
// Key-value pairs are printed as `key=value`.  A trailing key without value
// is printed as `key=<missing>`.
package mulog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

func format(level, msg string, kv []interface{}) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(": ")
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", kv[i])
		}
	}
	return b.String()
}

// `Printer` prints undecorated messages to `W`, or to stderr if `W` is nil.
// `Fatalw()` exits with status 1.
type Printer struct {
	W io.Writer
}

func (p Printer) printw(level, msg string, kv []interface{}) {
	w := p.W
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, format(level, msg, kv))
}

func (p Printer) Infow(msg string, kv ...interface{}) {
	p.printw("info", msg, kv)
}

func (p Printer) Warnw(msg string, kv ...interface{}) {
	p.printw("warning", msg, kv)
}

func (p Printer) Errorw(msg string, kv ...interface{}) {
	p.printw("error", msg, kv)
}

func (p Printer) Fatalw(msg string, kv ...interface{}) {
	p.printw("fatal", msg, kv)
	os.Exit(1)
}
