// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// syncBuffer is a bytes.Buffer safe for the two output copiers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func testCtx(t *testing.T) context.Context {
	t.Helper()

	if runtime.GOOS == GOOSWindows {
		t.Skip("shell tests use /bin/sh")
	}

	return ctxlog.New(context.Background(), ctxlog.NewPlain(&syncBuffer{}))
}

func TestExecutorRun_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	sink := &syncBuffer{}
	e := &Executor{Dir: t.TempDir()}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 4, Text: "echo hello; echo oops >&2"}, sink)

	assert.True(t, o.Success)
	assert.Equal(t, 0, o.ExitCode)
	require.NoError(t, o.Error)
	assert.Equal(t, 1, o.Index)
	assert.Equal(t, 4, o.Line)
	assert.Equal(t, "echo hello; echo oops >&2", o.Command)
	assert.False(t, o.StartedAt.IsZero())
	assert.Contains(t, sink.String(), "hello\n")
	assert.Contains(t, sink.String(), "oops\n")
	assert.Equal(t, "oops", o.LastLine)
}

func TestExecutorRun_NonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	e := &Executor{Dir: t.TempDir()}

	o := e.Run(ctx, 2, cmdlist.Command{Line: 1, Text: "echo 'fatal: repository not found' >&2; exit 3"}, &syncBuffer{})

	assert.False(t, o.Success)
	assert.Equal(t, 3, o.ExitCode)
	require.ErrorIs(t, o.Error, ErrExitStatus)
	assert.Equal(t, "fatal: repository not found", o.LastLine)
}

func TestExecutorRun_CommandNotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	e := &Executor{Dir: t.TempDir()}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "definitely-not-a-real-command-xyz"}, &syncBuffer{})

	assert.False(t, o.Success)
	assert.Equal(t, exitCommandNotFound, o.ExitCode)
	assert.ErrorIs(t, o.Error, ErrCommandNotFound)
}

func TestExecutorRun_ShellMissing(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	sink := &syncBuffer{}
	e := &Executor{Shell: "/not/a/real/shell", Dir: t.TempDir()}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "echo hi"}, sink)

	assert.False(t, o.Success)
	assert.Equal(t, -1, o.ExitCode)
	require.ErrorIs(t, o.Error, ErrCouldNotStartProcess)
	assert.Contains(t, sink.String(), "could not start process")
}

func TestExecutorRun_WorkingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	dir := t.TempDir()
	sink := &syncBuffer{}
	e := &Executor{Dir: dir, Env: []string{"SYNC_TARGET=mirror"}}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "pwd; echo $SYNC_TARGET"}, sink)

	require.True(t, o.Success)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, sink.String(), resolved)
	assert.Contains(t, sink.String(), "mirror")
}

func TestExecutorRun_VerboseStreamsToConsole(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	sink := &syncBuffer{}
	console := &syncBuffer{}
	e := &Executor{Dir: t.TempDir(), Verbose: true, Console: console}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "echo streamed"}, sink)

	require.True(t, o.Success)
	assert.Contains(t, sink.String(), "streamed")
	assert.Contains(t, console.String(), "streamed")
}

func TestExecutorRun_ContextCancelledKillsCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(testCtx(t), 200*time.Millisecond)
	defer cancel()

	e := &Executor{Dir: t.TempDir()}

	start := time.Now()
	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "exec sleep 30"}, &syncBuffer{})

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.False(t, o.Success)
	assert.Equal(t, -1, o.ExitCode)
	assert.ErrorIs(t, o.Error, ErrAborted)
}

func TestExecutorRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx(t))
	cancel()

	e := &Executor{Dir: t.TempDir()}
	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "echo never"}, &syncBuffer{})

	assert.False(t, o.Success)
	assert.ErrorIs(t, o.Error, ErrAborted)
}

func TestExecutorRun_ShellByName(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := testCtx(t)
	sink := &syncBuffer{}
	e := &Executor{Shell: "sh", Dir: t.TempDir()}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "echo by-name"}, sink)

	require.NoError(t, o.Error)
	assert.True(t, o.Success)
	assert.Contains(t, sink.String(), "by-name")
}

func TestExecutorRun_ShellNameNotOnPath(t *testing.T) {
	ctx := testCtx(t)
	sink := &syncBuffer{}
	e := &Executor{Shell: "no-such-shell-xyz", Dir: t.TempDir()}

	o := e.Run(ctx, 1, cmdlist.Command{Line: 1, Text: "true"}, sink)

	assert.False(t, o.Success)
	assert.Equal(t, -1, o.ExitCode)
	require.ErrorIs(t, o.Error, ErrCouldNotStartProcess)
	require.ErrorIs(t, o.Error, ErrShellNotFound)
	assert.Contains(t, sink.String(), "no-such-shell-xyz")
}
