// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the foreground modes: a single round or a fixed number of rounds.
package run

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/options"
	"github.com/matt-FFFFFF/syncloop/internal/config"
	"github.com/matt-FFFFFF/syncloop/internal/logsink"
	"github.com/matt-FFFFFF/syncloop/internal/runbatch"
	"github.com/matt-FFFFFF/syncloop/internal/scheduler"
	"github.com/matt-FFFFFF/syncloop/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// RunCmd runs the command list in the foreground.
var RunCmd = NewRunCmd()

// NewRunCmd returns a run command with its own flag instances.
func NewRunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the command list once, or --count times with --interval seconds between rounds",
		Description: `Runs every command in the list in order, one at a time. A failing command does
not stop the round. Output of every command is appended to the day's log file.
The exit code is the number of failed commands, capped at 124.`,
		Flags:  append(options.Shared(), options.Count(1)),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	sum, err := Rounds(ctx, opts, cmd.Root().Writer)
	if err != nil {
		return options.Fatal(err)
	}

	if code := sum.ExitCode(); code != options.ExitOK {
		return cli.Exit("", code)
	}

	return nil
}

// Rounds runs the scheduler in the foreground with opts and reports each round to out.
// The returned error is only set when the command list could not be loaded.
func Rounds(ctx context.Context, opts *config.Options, out io.Writer) (*scheduler.Summary, error) {
	sink := logsink.New(ctx, opts.LogDir)
	defer sink.Close() //nolint:errcheck

	session := scheduler.NewSession()

	s := &scheduler.Scheduler{
		Policy: scheduler.Policy{
			Rounds:       opts.Rounds,
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
				Console: out,
			},
			Session: session,
		},
		Loader: options.Loader(ctx, opts),
		Sink:   sink,
		OnRound: func(res *runbatch.BatchResult, sum *scheduler.Summary) {
			_ = res.WriteText(out, runbatch.DefaultOutputOptions())
			fmt.Fprintf(out, "Cumulative: %d/%d succeeded over %d round(s)\n", sum.Success, sum.Total, sum.Rounds) //nolint:errcheck
		},
	}

	sum, err := s.Run(ctx, signalbroker.StopperFrom(ctx).Done())
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if sum.Stopped {
		fmt.Fprintln(out, "Stopped before all rounds completed.") //nolint:errcheck
	}

	fmt.Fprintf(out, "Log: %s\n", sink.Path()) //nolint:errcheck

	return sum, nil
}
