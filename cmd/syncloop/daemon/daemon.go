// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package daemon implements the background modes: start, stop, status and the hidden worker.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/options"
	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/config"
	"github.com/matt-FFFFFF/syncloop/internal/scheduler"
	"github.com/matt-FFFFFF/syncloop/internal/supervisor"
	"github.com/urfave/cli/v3"
)

// newSupervisor is replaced in tests.
var newSupervisor = func(opts *config.Options, spawner supervisor.Spawner) *supervisor.Supervisor {
	s := supervisor.New(opts.PIDFile, spawner)
	s.Grace = opts.Grace
	s.StopTimeout = opts.StopTimeout

	return s
}

// StartCmd launches the background daemon.
var StartCmd = &cli.Command{
	Name:  "start",
	Usage: "Run the command list forever in the background, --interval seconds between rounds",
	Description: `Starts a detached worker and records it in the PID file. Only one daemon may run
per PID file. The worker's own output goes to daemon.out in the log directory.`,
	Flags:  options.Shared(),
	Action: startAction,
}

// StopCmd stops the background daemon.
var StopCmd = &cli.Command{
	Name:  "stop",
	Usage: "Stop the background daemon",
	Description: `Asks the daemon to stop after its current command. If it has not exited within
the stop timeout, the daemon and its running command are killed.`,
	Flags:  options.Shared(),
	Action: stopAction,
}

func startAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	// A broken local list must fail here, not in the detached worker.
	if !cmdlist.IsRemote(opts.List) {
		if _, err := cmdlist.Validate(opts.List); err != nil {
			return options.Fatal(err)
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return options.Fatal(fmt.Errorf("could not locate own executable: %w", err))
	}

	session := scheduler.NewSession()

	spawner := &supervisor.ExecSpawner{
		Executable: exe,
		Args:       options.WorkerArgs(opts, cmd.String(options.ConfigFlag), session),
		Dir:        opts.BaseDir,
		Output:     filepath.Join(opts.LogDir, supervisor.DaemonOutputFile),
	}

	st, err := newSupervisor(opts, spawner).Start(ctx, supervisor.State{
		Session:  session,
		List:     opts.List,
		Interval: opts.Interval,
		LogDir:   opts.LogDir,
		BaseDir:  opts.BaseDir,
	})

	var running *supervisor.AlreadyRunningError

	switch {
	case errors.As(err, &running):
		return options.Fatal(fmt.Errorf("%w (pid file %s)", err, opts.PIDFile))
	case err != nil:
		return options.Fatal(fmt.Errorf("%w, see %s", err, spawner.Output))
	}

	fmt.Fprintf(cmd.Root().Writer, "syncloop daemon started with pid %d\n", st.PID) //nolint:errcheck

	return nil
}

func stopAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	res, err := newSupervisor(opts, nil).Stop(ctx)
	if err != nil {
		return options.Fatal(err)
	}

	switch res {
	case supervisor.NotRunning:
		fmt.Fprintln(cmd.Root().Writer, "syncloop daemon is not running") //nolint:errcheck
	case supervisor.Stopped:
		fmt.Fprintln(cmd.Root().Writer, "syncloop daemon stopped") //nolint:errcheck
	case supervisor.Killed:
		fmt.Fprintf(cmd.Root().Writer, "syncloop daemon did not stop within %s and was killed\n", opts.StopTimeout) //nolint:errcheck
	}

	return nil
}
