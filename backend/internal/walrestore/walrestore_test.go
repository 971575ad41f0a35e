//go:build !windows
// +build !windows

package walrestore_test

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/nogproject/walrestore/backend/internal/restorecmd"
	"github.com/nogproject/walrestore/backend/internal/walrestore"
	"github.com/stretchr/testify/require"
)

const (
	subdir  = "archive"
	segment = "000000010000000000000001"
)

type fatalw struct {
	msg string
	kv  []interface{}
}

type testLogger struct {
	t *testing.T
}

func (lg testLogger) Infow(msg string, kv ...interface{}) {
	lg.t.Logf("info: %s %v", msg, kv)
}

func (lg testLogger) Fatalw(msg string, kv ...interface{}) {
	panic(fatalw{msg: msg, kv: kv})
}

type fakeRunner struct {
	status runResult
	calls  []string
}

type runResult struct {
	walrestore.ExitStatus
	err error
}

func (r *fakeRunner) Run(command string) (walrestore.ExitStatus, error) {
	r.calls = append(r.calls, command)
	return r.status.ExitStatus, r.status.err
}

// `setupDataDir()` changes to a temporary data directory with an empty
// `pg_wal/archive` and returns the absolute path of a separate archive
// directory.
func setupDataDir(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(
		filepath.Join(dir, "data", walrestore.XLogDir, subdir), 0700,
	))
	archive := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(archive, 0700))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Join(dir, "data")))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return archive
}

func archiveSegment(t *testing.T, archive string, size int) {
	data := bytes.Repeat([]byte{'w'}, size)
	path := filepath.Join(archive, segment)
	require.NoError(t, ioutil.WriteFile(path, data, 0600))
}

func newShellRestorer(t *testing.T, out *bytes.Buffer) *walrestore.Restorer {
	runner, err := walrestore.NewShellRunner()
	require.NoError(t, err)
	runner.Output = out
	return walrestore.New(testLogger{t}, &walrestore.Config{
		Runner: runner,
	})
}

func cpCommand(archive string) string {
	return fmt.Sprintf(`cp "%s/%%f" "%%p"`, archive)
}

func TestSegmentPath(t *testing.T) {
	require.Equal(t,
		"pg_wal/archive/"+segment,
		walrestore.SegmentPath(subdir, segment),
	)
}

func TestRestoreSuccess(t *testing.T) {
	archive := setupDataDir(t)
	archiveSegment(t, archive, 64)

	var out bytes.Buffer
	r := newShellRestorer(t, &out)
	cmd := `echo "fetching %f"; ` + cpCommand(archive)
	fp, err := r.Restore(subdir, segment, 64, cmd)
	require.NoError(t, err)
	defer fp.Close()

	require.Equal(t, walrestore.SegmentPath(subdir, segment), fp.Name())
	data, err := ioutil.ReadAll(fp)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{'w'}, 64), data)
	require.Equal(t, "fetching "+segment+"\n", out.String())
}

// Size validation requires exact equality.
func TestRestoreSizeMismatch(t *testing.T) {
	for _, c := range []struct {
		actual   int
		expected uint64
	}{
		{50, 64},
		{99, 100},
		{101, 100},
		{0, 16 * 1024 * 1024},
	} {
		archive := setupDataDir(t)
		archiveSegment(t, archive, c.actual)

		var out bytes.Buffer
		r := newShellRestorer(t, &out)
		fp, err := r.Restore(subdir, segment, c.expected, cpCommand(archive))
		require.Nil(t, fp)
		require.Error(t, err)

		var rerr *walrestore.Error
		require.True(t, errors.As(err, &rerr))
		require.Equal(t, walrestore.KindSizeMismatch, rerr.Kind)
		require.Equal(t, walrestore.CategoryValidation, rerr.Kind.Category())
		require.Equal(t, uint64(c.actual), rerr.Got)
		require.Equal(t, c.expected, rerr.Want)
		require.Equal(t,
			fmt.Sprintf(
				`unexpected file size for "pg_wal/archive/%s": %d instead of %d`,
				segment, c.actual, c.expected,
			),
			err.Error(),
		)
	}
}

func TestRestoreCommandFailed(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	r := newShellRestorer(t, &out)

	_, err := r.Restore(subdir, segment, 64, `echo "no %f" >&2; exit 3`)
	var rerr *walrestore.Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, walrestore.KindCommandFailed, rerr.Kind)
	require.Equal(t, walrestore.CategoryCommand, rerr.Kind.Category())
	require.Equal(t, 3, rerr.ExitCode)
	require.Contains(t, err.Error(),
		`could not restore file "pg_wal/archive/`+segment+`" from archive`,
	)
	require.Equal(t, "no "+segment+"\n", out.String())
}

func TestRestoreCommandSignaled(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	r := newShellRestorer(t, &out)

	_, err := r.Restore(subdir, segment, 64, `kill -9 $$`)
	var rerr *walrestore.Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, walrestore.KindCommandSignaled, rerr.Kind)
	require.Equal(t, syscall.SIGKILL, rerr.Signal)
	require.True(t, strings.HasPrefix(
		err.Error(), "restore command failed: terminated by signal",
	))
}

func TestRestoreStatFailed(t *testing.T) {
	setupDataDir(t)
	var out bytes.Buffer
	r := newShellRestorer(t, &out)

	_, err := r.Restore(subdir, segment, 64, "true")
	require.Equal(t, walrestore.KindStat, walrestore.KindOf(err))
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Contains(t, err.Error(), `could not stat file "pg_wal/archive/`)
}

func TestRestoreOpenFailed(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can open unreadable files")
	}
	archive := setupDataDir(t)
	archiveSegment(t, archive, 64)
	var out bytes.Buffer
	r := newShellRestorer(t, &out)

	cmd := cpCommand(archive) + ` && chmod 0000 "%p"`
	_, err := r.Restore(subdir, segment, 64, cmd)
	require.Equal(t, walrestore.KindOpen, walrestore.KindOf(err))
	require.True(t, errors.Is(err, os.ErrPermission))
	require.Contains(t, err.Error(), "restored from archive")
}

// `%r` is never bound on the restore path, so the command is never run.
func TestRestoreRestartPointUnsatisfiable(t *testing.T) {
	runner := &fakeRunner{}
	r := walrestore.New(testLogger{t}, &walrestore.Config{Runner: runner})

	_, err := r.Restore(subdir, segment, 64, "cleanup %r")
	require.Equal(t, walrestore.KindUnsatisfiable, walrestore.KindOf(err))
	require.Equal(t,
		walrestore.CategoryTemplate, walrestore.KindOf(err).Category(),
	)
	require.True(t, errors.Is(err, restorecmd.ErrUnsatisfied))
	require.Equal(t,
		"cannot use restore_command with %r placeholder", err.Error(),
	)
	require.Len(t, runner.calls, 0)
}

func TestRestoreRendersCommand(t *testing.T) {
	runner := &fakeRunner{status: runResult{
		ExitStatus: walrestore.ExitStatus{Code: 1},
	}}
	r := walrestore.New(testLogger{t}, &walrestore.Config{Runner: runner})

	_, err := r.Restore(subdir, segment, 64, `restore --dest "%p" %f 100%%`)
	require.Equal(t, walrestore.KindCommandFailed, walrestore.KindOf(err))

	path, err := restorecmd.Build("%p", restorecmd.Bindings{
		XLogPath: walrestore.SegmentPath(subdir, segment),
	})
	require.NoError(t, err)
	require.Equal(t,
		[]string{`restore --dest "` + path + `" ` + segment + ` 100%`},
		runner.calls,
	)
}

func TestRestoreRunnerClassification(t *testing.T) {
	launchErr := errors.New("exec: \"sh\": executable file not found")
	for _, c := range []struct {
		status runResult
		kind   walrestore.Kind
	}{
		{runResult{err: launchErr}, walrestore.KindCommandLaunch},
		{
			runResult{ExitStatus: walrestore.ExitStatus{
				Code: -1, Signal: syscall.SIGTERM,
			}},
			walrestore.KindCommandSignaled,
		},
		{
			runResult{ExitStatus: walrestore.ExitStatus{Code: 127}},
			walrestore.KindCommandFailed,
		},
	} {
		runner := &fakeRunner{status: c.status}
		r := walrestore.New(testLogger{t}, &walrestore.Config{
			Runner: runner,
		})
		_, err := r.Restore(subdir, segment, 64, "fetch %f %p")
		require.Equal(t, c.kind, walrestore.KindOf(err))
		require.Equal(t,
			walrestore.CategoryCommand, walrestore.KindOf(err).Category(),
		)
	}

	runner := &fakeRunner{status: runResult{err: launchErr}}
	r := walrestore.New(testLogger{t}, &walrestore.Config{Runner: runner})
	_, err := r.Restore(subdir, segment, 64, "fetch")
	require.True(t, errors.Is(err, launchErr))
	require.Equal(t, "restore command failed: "+launchErr.Error(), err.Error())
}

func TestMustRestoreFatal(t *testing.T) {
	runner := &fakeRunner{}
	r := walrestore.New(testLogger{t}, &walrestore.Config{Runner: runner})

	var got fatalw
	func() {
		defer func() {
			v := recover()
			require.NotNil(t, v)
			got = v.(fatalw)
		}()
		r.MustRestore(subdir, segment, 64, "cleanup %r")
	}()

	require.Equal(t, "cannot use restore_command with %r placeholder", got.msg)
	require.Equal(t, "kind", got.kv[0])
	require.Equal(t, "unsatisfiable", got.kv[1])
}

func TestMustRestoreSuccess(t *testing.T) {
	archive := setupDataDir(t)
	archiveSegment(t, archive, 16)

	var out bytes.Buffer
	r := newShellRestorer(t, &out)
	fp := r.MustRestore(subdir, segment, 16, cpCommand(archive))
	require.NotNil(t, fp)
	require.NoError(t, fp.Close())
}
