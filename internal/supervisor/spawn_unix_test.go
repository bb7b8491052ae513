// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// gone reports whether pid has exited. A zombie counts as gone, since an
// orphan is only reaped by whatever init the test runs under.
func gone(pid int) bool {
	if !(OSProcessTable{}).Alive(pid) {
		return true
	}

	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}

	// The state follows the parenthesised command name.
	_, after, ok := strings.Cut(string(stat), ") ")

	return ok && strings.HasPrefix(after, "Z")
}

func waitExited(t *testing.T, w *Worker) {
	t.Helper()

	select {
	case <-w.Exited:
	case <-time.After(10 * time.Second):
		t.Fatal("worker exit was not observed")
	}
}

func TestExecSpawner_DetachesAndKillsProcessGroup(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "logs", DaemonOutputFile)
	childPIDFile := filepath.Join(dir, "child.pid")

	sp := &ExecSpawner{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo worker up; sleep 30 & echo $! > child.pid; wait"},
		Dir:        dir,
		Output:     out,
	}

	w, err := sp.Spawn(context.Background())
	require.NoError(t, err)

	procs := OSProcessTable{}
	require.True(t, procs.Alive(w.PID))

	sid, err := unix.Getsid(w.PID)
	require.NoError(t, err)
	assert.Equal(t, w.PID, sid, "worker leads its own session")

	pgid, err := unix.Getpgid(w.PID)
	require.NoError(t, err)
	assert.Equal(t, w.PID, pgid, "worker leads its own process group")

	var childPID int

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(childPIDFile)
		if err != nil || !strings.HasSuffix(string(data), "\n") {
			return false
		}

		childPID, err = strconv.Atoi(strings.TrimSpace(string(data)))

		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	require.True(t, procs.Alive(childPID))

	require.NoError(t, procs.Kill(w.PID))
	waitExited(t, w)

	assert.Eventually(t, func() bool { return gone(childPID) }, 10*time.Second, 20*time.Millisecond,
		"the worker's child is killed with its process group")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker up")
}

func TestExecSpawner_AppendsOutputAndReportsExit(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, DaemonOutputFile)
	require.NoError(t, os.WriteFile(out, []byte("previous run\n"), 0o644))

	sp := &ExecSpawner{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo to-stdout; echo to-stderr >&2"},
		Dir:        dir,
		Output:     out,
	}

	w, err := sp.Spawn(context.Background())
	require.NoError(t, err)
	waitExited(t, w)

	assert.False(t, OSProcessTable{}.Alive(w.PID), "an exited worker is reaped")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous run\n"), "output is appended, got %q", data)
	assert.Contains(t, string(data), "to-stdout\n")
	assert.Contains(t, string(data), "to-stderr\n")
}

func TestExecSpawner_MissingExecutable(t *testing.T) {
	sp := &ExecSpawner{
		Executable: filepath.Join(t.TempDir(), "missing"),
		Output:     filepath.Join(t.TempDir(), DaemonOutputFile),
	}

	_, err := sp.Spawn(context.Background())
	assert.ErrorIs(t, err, ErrSpawn)
}
