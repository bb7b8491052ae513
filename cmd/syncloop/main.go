// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the syncloop command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/syncloop"
	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/daemon"
	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/run"
	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/validate"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		daemon.StartCmd,
		daemon.StopCmd,
		daemon.StatusCmd,
		validate.ValidateCmd,
		daemon.WorkerCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "syncloop",
	Description: `syncloop runs an ordered list of shell commands, one line per command, once,
a fixed number of times, or forever as a background daemon. Every command runs
whether or not the previous one failed, and all output is appended to a log file
per day. Set SYNCLOOP_LOG_LEVEL to DEBUG, INFO, WARN or ERROR for diagnostics.`,
	Usage:     "syncloop run --list commands.txt",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	stopper := signalbroker.NewStopper()
	ctx = signalbroker.WithStopper(ctx, stopper)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, stopper, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", syncloop.Version, syncloop.Commit)

	// Exit codes carried by cli.Exit are handled by the cli framework.
	if err := rootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
