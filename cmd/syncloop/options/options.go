// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package options holds the flags shared by the syncloop commands and turns them into run options.
package options

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/config"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/runbatch"
	"github.com/urfave/cli/v3"
)

// Flag names.
const (
	ListFlag     = "list"
	LogDirFlag   = "log-dir"
	IntervalFlag = "interval"
	CountFlag    = "count"
	VerboseFlag  = "verbose"
	ConfigFlag   = "config"
	PIDFileFlag  = "pid-file"
	BaseDirFlag  = "base-dir"
	ReloadFlag   = "reload"
	ShellFlag    = "shell"
	SessionFlag  = "session"
)

// Exit codes.
const (
	ExitOK = 0
	// ExitFatal is used for configuration and supervisor errors, before any command runs.
	ExitFatal = 125
)

// fetchCacheDir is where remote command lists are downloaded, inside the log directory.
const fetchCacheDir = ".cache"

// Shared returns fresh instances of the flags every mode accepts.
func Shared() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      ListFlag,
			Aliases:   []string{"l"},
			Usage:     "Command list file, or a go-getter source such as git::https://host/repo.git//commands.txt",
			Value:     config.DefaultList,
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      LogDirFlag,
			Usage:     "Directory for the date-partitioned logs",
			Value:     config.DefaultLogDir,
			TakesFile: true,
		},
		&cli.IntFlag{
			Name:    IntervalFlag,
			Aliases: []string{"i"},
			Usage:   "Seconds to wait between rounds",
			Value:   int(config.DefaultInterval / time.Second),
		},
		&cli.BoolFlag{
			Name:    VerboseFlag,
			Aliases: []string{"v"},
			Usage:   "Stream command output to the console and log at info level",
		},
		&cli.StringFlag{
			Name:      ConfigFlag,
			Aliases:   []string{"c"},
			Usage:     "HCL options file; flags override its values",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      PIDFileFlag,
			Usage:     "PID record of the background daemon",
			Value:     config.DefaultPIDFile,
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      BaseDirFlag,
			Usage:     "Working directory for commands and base for relative paths (default: current directory)",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  ReloadFlag,
			Usage: "Reload the command list before every round",
		},
		&cli.StringFlag{
			Name:  ShellFlag,
			Usage: "Shell used to run commands (default: /bin/sh, or cmd.exe on Windows)",
		},
	}
}

// Count returns the round count flag.
func Count(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    CountFlag,
		Aliases: []string{"n"},
		Usage:   "Number of rounds to run, 0 runs until stopped",
		Value:   value,
	}
}

// Session returns the hidden flag carrying the daemon session id to the worker.
func Session() cli.Flag {
	return &cli.StringFlag{
		Name:   SessionFlag,
		Hidden: true,
	}
}

// Build returns validated, resolved options: defaults, then the options file, then explicit flags.
// It also raises the log level when verbose output is requested.
func Build(ctx context.Context, cmd *cli.Command) (*config.Options, error) {
	opts := config.Default()

	if path := cmd.String(ConfigFlag); path != "" {
		if err := config.LoadFile(path, &opts); err != nil {
			return nil, err //nolint:wrapcheck
		}

		ctxlog.Debug(ctx, "loaded options file", "path", path)
	}

	if cmd.IsSet(ListFlag) {
		opts.List = cmd.String(ListFlag)
	}

	if cmd.IsSet(LogDirFlag) {
		opts.LogDir = cmd.String(LogDirFlag)
	}

	if cmd.IsSet(IntervalFlag) {
		opts.Interval = time.Duration(cmd.Int(IntervalFlag)) * time.Second
	}

	if cmd.IsSet(CountFlag) {
		opts.Rounds = int(cmd.Int(CountFlag))
	}

	if cmd.IsSet(VerboseFlag) {
		opts.Verbose = cmd.Bool(VerboseFlag)
	}

	if cmd.IsSet(PIDFileFlag) {
		opts.PIDFile = cmd.String(PIDFileFlag)
	}

	if cmd.IsSet(BaseDirFlag) {
		opts.BaseDir = cmd.String(BaseDirFlag)
	}

	if cmd.IsSet(ReloadFlag) {
		opts.Reload = cmd.Bool(ReloadFlag)
	}

	if cmd.IsSet(ShellFlag) {
		opts.Shell = cmd.String(ShellFlag)
	}

	if err := opts.Validate(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := opts.Resolve(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if opts.Shell != "" {
		shell, err := runbatch.ResolveShell(opts.Shell)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		opts.Shell = shell
	}

	if opts.Verbose {
		ctxlog.RaiseTo(slog.LevelInfo)
	}

	return &opts, nil
}

// Loader returns a function that fetches, when remote, and loads the command list.
func Loader(ctx context.Context, opts *config.Options) func() ([]cmdlist.Command, error) {
	return func() ([]cmdlist.Command, error) {
		path, err := cmdlist.Fetch(ctx, opts.List, filepath.Join(opts.LogDir, fetchCacheDir))
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		return cmdlist.Load(path) //nolint:wrapcheck
	}
}

// WorkerArgs returns the command line that makes a worker run opts in daemon mode.
// Paths in opts must already be resolved.
func WorkerArgs(opts *config.Options, configFile, session string) []string {
	args := []string{
		"worker",
		"--" + ListFlag, opts.List,
		"--" + LogDirFlag, opts.LogDir,
		"--" + IntervalFlag, strconv.Itoa(int(opts.Interval / time.Second)),
		"--" + PIDFileFlag, opts.PIDFile,
		"--" + BaseDirFlag, opts.BaseDir,
		"--" + SessionFlag, session,
	}

	if configFile != "" {
		abs, err := filepath.Abs(configFile)
		if err == nil {
			configFile = abs
		}

		args = append(args, "--"+ConfigFlag, configFile)
	}

	if opts.Shell != "" {
		args = append(args, "--"+ShellFlag, opts.Shell)
	}

	if opts.Reload {
		args = append(args, "--"+ReloadFlag)
	}

	if opts.Verbose {
		args = append(args, "--"+VerboseFlag)
	}

	return args
}

// Fatal wraps err as a fatal exit.
func Fatal(err error) error {
	return cli.Exit(fmt.Sprintf("syncloop: %s", err), ExitFatal)
}
