// vim: sw=8

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/nogproject/walrestore/backend/pkg/mulog"
	"github.com/nogproject/walrestore/backend/pkg/zap"
)

// `xVersion` and `xBuild` are injected by the `Makefile`.
var (
	xVersion string
	xBuild   string
	version  = fmt.Sprintf("walrestore-%s+%s", xVersion, xBuild)
)

// `qqBackticks()` translates double single quote to backtick.
func qqBackticks(s string) string {
	return strings.Replace(s, "''", "`", -1)
}

var usage = qqBackticks(strings.TrimSpace(`
Usage:
  walrestore [-C <datadir>] [--log=<mode>] restore [--restore-command=<cmd>] [--fd-socket=<path>] --expected-size=<size> <subdir> <segment>
  walrestore [-C <datadir>] [--log=<mode>] build-command [--restore-command=<cmd>] [--xlog-path=<path>] [--xlog-fname=<name>] [--last-restart-point=<name>]
  walrestore [-C <datadir>] [--log=<mode>] check [--restore-command=<cmd>]

Options:
  -C <datadir>       Run as if walrestore was started in ''<datadir>''.
  --log=<mode>       Logging: ''mu'' plain text to stderr, ''prod'' Zap JSON,
                     ''dev'' Zap console.  The default is ''log'' from the
                     config or ''mu''.
  --restore-command=<cmd>  The ''restore_command'' template.  The default is
                     ''restoreCommand'' from the config.
  --expected-size=<size>  Exact size of the segment in bytes.  ''k'', ''m'',
                     ''g'' can be used, which are interpreted as binary SI.
  --fd-socket=<path>  Pass the open segment over the Unix socket ''<path>''
                     instead of printing its path.
  --xlog-path=<path>  Value for ''%p''.
  --xlog-fname=<name>  Value for ''%f''.
  --last-restart-point=<name>  Value for ''%r''.

''walrestore restore'' runs the restore command to fetch ''<segment>'' into
''pg_wal/<subdir>/<segment>'', relative to the data directory, and verifies that
the restored file has exactly ''--expected-size'' bytes.  The restore command is
run with ''sh -c'' and waited for without timeout.  Its output is written to
stderr.  On success, walrestore prints:

    <path> <tab> <size>

or, with ''--fd-socket'', connects to ''<path>'' and passes the open file
descriptor with ''SCM_RIGHTS''.  Any failure is fatal with exit code 1.

The restore command template supports the placeholders:

 - ''%p'': path of the segment relative to the data directory;
 - ''%f'': segment file name;
 - ''%r'': file name of the last restart point, which is never available
   during restore, so that templates that use ''%r'' are rejected;
 - ''%%'': a literal ''%''.

Placeholder values are inserted once and not expanded again.  ''%%p'' is ''%''
followed by the path, and ''%%f'' and ''%%r'' work the same way.

''walrestore build-command'' prints the command for the given placeholder
values.  It fails if the template uses a placeholder without value.

''walrestore check'' prints the placeholders that the template uses and fails
if it cannot be used for restore.

Configuration is read from ''walrestore.yml'' in the data directory:

    restoreCommand: 'cp "/mnt/archive/%f" "%p"'
    log: mu

''walrestore.hcl'' is still read but DEPRECATED.
`))

type Logger interface {
	Infow(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
	Errorw(msg string, kv ...interface{})
	Fatalw(msg string, kv ...interface{})
}

var lg Logger = mulog.Printer{}

// `stdout` receives the machine-readable output of the commands.
var stdout io.Writer = os.Stdout

func main() {
	args := argparse()

	if d, ok := args["-C"].(string); ok {
		if err := os.Chdir(d); err != nil {
			lg.Fatalw("Failed to apply -C.", "err", err)
		}
	}

	cfg, err := loadConfig(".")
	if err != nil {
		lg.Fatalw("Failed to load config.", "err", err)
	}

	mode := "mu"
	if cfg.Log != "" {
		mode = cfg.Log
	}
	if v, ok := args["--log"].(string); ok {
		mode = v
	}
	setLogger(mode)

	switch {
	case args["restore"].(bool):
		cmdRestore(args, cfg)
	case args["build-command"].(bool):
		cmdBuildCommand(args, cfg)
	case args["check"].(bool):
		cmdCheck(args, cfg)
	default:
		panic("unhandled args")
	}
}

func setLogger(mode string) {
	switch mode {
	case "mu":
		lg = mulog.Printer{}
	case "prod", "dev":
		l, err := zap.New(mode)
		if err != nil {
			lg.Fatalw("Failed to create logger.", "err", err)
		}
		lg = l
	default:
		lg.Fatalw("Invalid --log.", "mode", mode)
	}
}

func argparse() map[string]interface{} {
	const autoHelp = true
	const noOptionFirst = false
	args, err := docopt.Parse(
		usage, nil, autoHelp, version, noOptionFirst,
	)
	if err != nil {
		lg.Fatalw("docopt failed.", "err", err)
	}

	for _, k := range []string{
		"--expected-size",
	} {
		if arg, ok := args[k].(string); ok {
			v, err := parseUint64Si(arg)
			if err != nil {
				msg := fmt.Sprintf("Invalid %s.", k)
				lg.Fatalw(msg, "err", err)
			}
			args[k] = v
		}
	}

	return args
}

// `restoreCommandMust()` returns `--restore-command` or the config value.
func restoreCommandMust(args map[string]interface{}, cfg *Config) string {
	if v, ok := args["--restore-command"].(string); ok {
		return v
	}
	if cfg.RestoreCommand != "" {
		return cfg.RestoreCommand
	}
	lg.Fatalw(
		"Missing restore command; " +
			"use --restore-command or `restoreCommand` in config.",
	)
	return ""
}
