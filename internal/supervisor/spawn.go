// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// DaemonOutputFile is the name of the worker's stdout and stderr file inside the log directory.
const DaemonOutputFile = "daemon.out"

// ErrSpawn is returned when the worker process could not be launched.
var ErrSpawn = errors.New("could not spawn worker")

// Worker is a handle to a spawned worker.
type Worker struct {
	PID    int
	Exited <-chan struct{} // closed once the worker has exited and been reaped
}

// Spawner launches a detached worker.
type Spawner interface {
	Spawn(ctx context.Context) (*Worker, error)
}

// ExecSpawner starts Executable with Args in a new session, detached from the
// caller's terminal, with stdin closed and stdout and stderr appended to Output.
type ExecSpawner struct {
	Executable string
	Args       []string
	Dir        string
	Output     string
	Env        []string // appended to the inherited environment
}

var _ Spawner = (*ExecSpawner)(nil)

// Spawn starts the worker. The returned Worker's Exited channel is closed when
// the child exits, so a crashed worker is never mistaken for a zombie that is alive.
func (e *ExecSpawner) Spawn(ctx context.Context) (*Worker, error) {
	if e.Output != "" {
		if err := os.MkdirAll(filepath.Dir(e.Output), dirPerm); err != nil {
			return nil, errors.Join(ErrSpawn, err)
		}
	}

	out, err := openOutput(e.Output)
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	defer out.Close() //nolint:errcheck

	// The worker must outlive ctx, so it is not bound to it.
	cmd := exec.Command(e.Executable, e.Args...) //nolint:gosec,noctx
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), e.Env...)
	cmd.Stdin = nil
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return nil, errors.Join(ErrSpawn, fmt.Errorf("%s: %w", e.Executable, err))
	}

	exited := make(chan struct{})

	go func() {
		defer close(exited)

		_ = cmd.Wait()
	}()

	return &Worker{PID: cmd.Process.Pid, Exited: exited}, nil
}

func openOutput(path string) (*os.File, error) {
	if path == "" {
		return os.OpenFile(os.DevNull, os.O_WRONLY, 0) //nolint:wrapcheck
	}

	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, recordPerm) //nolint:wrapcheck
}
