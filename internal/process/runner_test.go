//go:build unix

package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/testutil"
)

func TestRun_CapturesOutputAndExitCode(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteScript(t, dir, "tool", `echo "out $1"; echo "err $2" >&2; exit 3`)

	outcome, err := NewRunner().Run(context.Background(), domain.Command{Path: stub, Args: []string{"a b", "c;d"}})
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Equal(t, "out a b\n", string(outcome.Stdout))
	assert.Equal(t, "err c;d\n", string(outcome.Stderr))
}

func TestRun_ArgumentsAreNotShellInterpreted(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "pwned")
	stub := testutil.WriteScript(t, dir, "tool", `printf '%s' "$1"`)

	arg := "$(touch " + marker + ")"
	outcome, err := NewRunner().Run(context.Background(), domain.Command{Path: stub, Args: []string{arg}})
	require.NoError(t, err)
	assert.Equal(t, arg, string(outcome.Stdout))
	assert.NoFileExists(t, marker)
}

func TestRun_DrainsBothPipesConcurrently(t *testing.T) {
	dir := t.TempDir()
	// Far larger than a pipe buffer on either stream; a sequential reader would block.
	stub := testutil.WriteScript(t, dir, "tool", `head -c 1048576 /dev/zero >&2; head -c 1048576 /dev/zero; head -c 1024 /dev/zero >&2`)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	outcome, err := NewRunner().Run(ctx, domain.Command{Path: stub})
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Len(t, outcome.Stdout, 1048576)
	assert.Len(t, outcome.Stderr, 1048576+1024)
}

func TestRun_WritesStdinWhileDraining(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteScript(t, dir, "tool", `cat`)

	input := bytes.Repeat([]byte("pdf-bytes-"), 100000)
	outcome, err := NewRunner().Run(context.Background(), domain.Command{Path: stub, Stdin: input})
	require.NoError(t, err)
	assert.Equal(t, input, outcome.Stdout)
}

func TestRun_StdinFailureOnCleanExit(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteScript(t, dir, "tool", `exit 0`)

	_, err := NewRunner().Run(context.Background(), domain.Command{Path: stub, Stdin: make([]byte, 4<<20)})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeStdinWrite, domain.TypeOf(err))
}

func TestRun_StdinFailureYieldsToExitCode(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteScript(t, dir, "tool", `echo "May not be a PDF file" >&2; exit 1`)

	outcome, err := NewRunner().Run(context.Background(), domain.Command{Path: stub, Stdin: make([]byte, 4<<20)})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Contains(t, string(outcome.Stderr), "May not be a PDF file")
}

func TestRun_ExecutableNotFound(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"bare name", "pdfproc-no-such-tool"},
		{"explicit path", filepath.Join(t.TempDir(), "missing", "pdfinfo")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner().Run(context.Background(), domain.Command{Path: tt.path})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrExecutableNotFound), "got %v", err)
		})
	}
}

func TestRun_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	_, err := NewRunner().Run(context.Background(), domain.Command{Path: path})
	assert.True(t, errors.Is(err, domain.ErrExecutableNotFound), "got %v", err)
}

func TestRun_EmptyPath(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), domain.Command{})
	assert.True(t, errors.Is(err, domain.ErrInvalidArguments))
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "pid")
	stub := testutil.WriteScript(t, dir, "slow", `echo $$ > "`+pidFile+`"; exec sleep 30`)

	start := time.Now()
	_, err := NewRunner(WithWaitDelay(500*time.Millisecond)).Run(context.Background(), domain.Command{
		Path:    stub,
		Timeout: 300 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 3*time.Second)

	pid := testutil.ReadPID(t, pidFile)
	assert.False(t, testutil.ProcessAlive(pid), "process %d still running", pid)
}

func TestRun_TimeoutKillsGrandchildren(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "pid")
	// The background sleep inherits the pipes; only a group kill releases them.
	stub := testutil.WriteScript(t, dir, "slow", `sleep 30 & echo $! > "`+pidFile+`"; wait`)

	start := time.Now()
	_, err := NewRunner(WithWaitDelay(500*time.Millisecond)).Run(context.Background(), domain.Command{
		Path:    stub,
		Timeout: 300 * time.Millisecond,
	})
	require.True(t, errors.Is(err, domain.ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 3*time.Second)

	pid := testutil.ReadPID(t, pidFile)
	assert.Eventually(t, func() bool { return !testutil.ProcessAlive(pid) }, 2*time.Second, 20*time.Millisecond,
		"grandchild %s still running", strconv.Itoa(pid))
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	stub := testutil.WriteScript(t, dir, "slow", `exec sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := NewRunner().Run(ctx, domain.Command{Path: stub})
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_ExpiredContextDoesNotSpawn(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	stub := testutil.WriteScript(t, dir, "tool", `touch "`+marker+`"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner().Run(ctx, domain.Command{Path: stub})
	assert.True(t, errors.Is(err, domain.ErrTimeout))
	assert.NoFileExists(t, marker)
}

func TestRedactArgs(t *testing.T) {
	args := []string{"-f", "1", "-upw", "secret", "-opw", "owner", "in.pdf"}
	got := RedactArgs(args)

	assert.Equal(t, []string{"-f", "1", "-upw", "******", "-opw", "******", "in.pdf"}, got)
	assert.Equal(t, "secret", args[3], "input must not be modified")
	assert.Equal(t, []string{"-upw"}, RedactArgs([]string{"-upw"}))
}
