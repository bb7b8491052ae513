// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"log/slog"
	"os"

	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/options"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/logsink"
	"github.com/matt-FFFFFF/syncloop/internal/runbatch"
	"github.com/matt-FFFFFF/syncloop/internal/scheduler"
	"github.com/matt-FFFFFF/syncloop/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// WorkerCmd is the detached daemon loop started by StartCmd.
var WorkerCmd = &cli.Command{
	Name:   "worker",
	Usage:  "Run the daemon loop in this process",
	Hidden: true,
	Flags:  append(options.Shared(), options.Session()),
	Action: workerAction,
}

func workerAction(ctx context.Context, cmd *cli.Command) error {
	// stderr is daemon.out; no terminal, no colour.
	ctx = ctxlog.New(ctx, ctxlog.NewPlain(os.Stderr))
	ctxlog.RaiseTo(slog.LevelInfo)

	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	sup := newSupervisor(opts, nil)

	defer func() {
		if err := sup.Release(ctx, os.Getpid()); err != nil {
			ctxlog.Error(ctx, "could not remove pid record", "error", err)
		}
	}()

	session := cmd.String(options.SessionFlag)
	if session == "" {
		session = scheduler.NewSession()
	}

	sink := logsink.New(ctx, opts.LogDir)
	defer sink.Close() //nolint:errcheck

	s := &scheduler.Scheduler{
		Policy: scheduler.Policy{
			Interval:     opts.Interval,
			MaxWaitSlice: opts.WaitSlice,
			Reload:       opts.Reload,
		},
		Runner: &runbatch.BatchRunner{
			Runner: &runbatch.Executor{
				Shell:   opts.Shell,
				Dir:     opts.BaseDir,
				Env:     opts.Env,
				Verbose: opts.Verbose,
				Console: os.Stdout,
			},
			Session: session,
		},
		Loader: options.Loader(ctx, opts),
		Sink:   sink,
		OnRound: func(res *runbatch.BatchResult, sum *scheduler.Summary) {
			ctxlog.Info(ctx, "round totals",
				"round", res.Round, "total", res.Total, "success", res.Success,
				"cumulativeTotal", sum.Total, "cumulativeSuccess", sum.Success)
		},
	}

	ctxlog.Info(ctx, "daemon loop starting", "pid", os.Getpid(), "session", session, "list", opts.List, "interval", opts.Interval)

	sum, err := s.Run(ctx, signalbroker.StopperFrom(ctx).Done())
	if err != nil {
		ctxlog.Error(ctx, "daemon loop could not start", "error", err)
		return options.Fatal(err)
	}

	ctxlog.Info(ctx, "daemon loop finished", "rounds", sum.Rounds, "total", sum.Total, "success", sum.Success)

	return nil
}
