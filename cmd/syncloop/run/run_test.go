// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/color"
	"github.com/matt-FFFFFF/syncloop/internal/config"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/logsink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// runCLI runs `syncloop run args...` and returns the process exit code it would produce.
func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()

	out := &bytes.Buffer{}
	root := &cli.Command{
		Name:           "syncloop",
		Writer:         out,
		ErrWriter:      out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands:       []*cli.Command{NewRunCmd()},
	}

	ctx := ctxlog.New(context.Background(), ctxlog.NewPlain(&bytes.Buffer{}))

	err := root.Run(ctx, append([]string{"syncloop", "run"}, args...))
	if err == nil {
		return 0, out.String()
	}

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)

	return exitErr.ExitCode(), out.String()
}

func TestRounds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	color.SetEnabled(false)

	base := t.TempDir()
	list := filepath.Join(base, "commands.txt")
	require.NoError(t, os.WriteFile(list, []byte("# mirrors\necho one\n\nfalse\necho two\n"), 0o644))

	opts := config.Default()
	opts.BaseDir = base
	opts.List = list
	opts.Rounds = 2
	opts.Interval = 0
	require.NoError(t, opts.Resolve())

	ctx := ctxlog.New(context.Background(), ctxlog.NewPlain(&bytes.Buffer{}))
	out := &bytes.Buffer{}

	sum, err := Rounds(ctx, &opts, out)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Rounds)
	assert.Equal(t, 6, sum.Total)
	assert.Equal(t, 4, sum.Success)
	assert.Equal(t, 2, sum.ExitCode())
	assert.Contains(t, out.String(), "Cumulative: 4/6 succeeded over 2 round(s)")

	data, err := os.ReadFile(logsink.PartitionPath(opts.LogDir, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ROUND 2 END")
	assert.Contains(t, string(data), "one\n")
}

func TestRounds_MissingListIsFatal(t *testing.T) {
	opts := config.Default()
	opts.BaseDir = t.TempDir()
	require.NoError(t, opts.Resolve())

	ctx := ctxlog.New(context.Background(), ctxlog.NewPlain(&bytes.Buffer{}))

	_, err := Rounds(ctx, &opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, cmdlist.ErrNotFound)
}

func TestRunCmd_ExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	color.SetEnabled(false)

	tests := []struct {
		name     string
		list     string
		wantCode int
	}{
		{
			name:     "two failures",
			list:     "true\nfalse\nfalse\n",
			wantCode: 2,
		},
		{
			name:     "all pass",
			list:     "true\necho ok\n",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(base, "commands.txt"), []byte(tt.list), 0o644))

			code, out := runCLI(t, "--base-dir", base, "--list", "commands.txt")
			assert.Equal(t, tt.wantCode, code, out)

			logs, err := filepath.Glob(filepath.Join(base, config.DefaultLogDir, "batch_*.log"))
			require.NoError(t, err)
			assert.Len(t, logs, 1)
		})
	}
}

func TestRunCmd_EmptyListIsFatal(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "commands.txt"), nil, 0o644))

	code, _ := runCLI(t, "--base-dir", base, "--list", "commands.txt")
	assert.Equal(t, 125, code)

	logs, err := filepath.Glob(filepath.Join(base, config.DefaultLogDir, "batch_*.log"))
	require.NoError(t, err)
	assert.Empty(t, logs, "no round log is written before a command runs")
}

func TestRunCmd_FailuresCappedAt124(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	color.SetEnabled(false)

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "commands.txt"), []byte("false\n"), 0o644))

	code, out := runCLI(t, "--base-dir", base, "--count", "130", "--interval", "0")
	assert.Equal(t, 124, code, out)
}
