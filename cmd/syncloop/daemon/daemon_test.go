// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package daemon

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func runRoot(t *testing.T, sub *cli.Command, args ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	root := &cli.Command{
		Name:     "syncloop",
		Writer:   out,
		Commands: []*cli.Command{sub},
	}

	ctx := ctxlog.New(context.Background(), ctxlog.NewPlain(&bytes.Buffer{}))
	require.NoError(t, root.Run(ctx, append([]string{"syncloop", sub.Name}, args...)))

	return out.String()
}

func TestStopAndStatus_NothingRunning(t *testing.T) {
	base := t.TempDir()
	pid := filepath.Join(base, "syncloop.pid")

	// A stale record pointing at a pid that cannot exist.
	require.NoError(t, os.WriteFile(pid, []byte("-7\n"), 0o644))

	out := runRoot(t, StatusCmd, "--base-dir", base)
	assert.Contains(t, out, "not running")

	_, err := os.Stat(pid)
	assert.ErrorIs(t, err, os.ErrNotExist)

	out = runRoot(t, StopCmd, "--base-dir", base)
	assert.Contains(t, out, "syncloop daemon is not running")
}
