// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
)

const (
	// DefaultList is the command list file name, relative to the base directory.
	DefaultList = "commands.txt"
	// DefaultLogDir is the log directory, relative to the base directory.
	DefaultLogDir = "logs"
	// DefaultPIDFile is the PID record, relative to the base directory.
	DefaultPIDFile = "syncloop.pid"
	// DefaultInterval is the pause between rounds.
	DefaultInterval = 5 * time.Minute
	// DefaultGrace is how long a new daemon must stay alive before it is recorded.
	DefaultGrace = time.Second
	// DefaultStopTimeout is how long stop waits before killing the daemon.
	DefaultStopTimeout = 30 * time.Second
	// DefaultWaitSlice is the longest uninterrupted sleep between stop checks.
	DefaultWaitSlice = 60 * time.Second
	// DefaultTailLines is how many log lines status shows.
	DefaultTailLines = 10
)

// ErrInvalid is returned when options fail validation.
var ErrInvalid = errors.New("invalid options")

// Options is the full set of run options.
type Options struct {
	List        string        // command list path or go-getter source
	LogDir      string        // directory of the date-partitioned logs
	Interval    time.Duration // pause between rounds
	Rounds      int           // rounds for finite runs, 0 runs forever
	Verbose     bool          // stream command output and raise the log level
	PIDFile     string        // PID record path
	BaseDir     string        // working directory of commands and anchor for relative paths
	Shell       string        // shell binary, empty for the host default
	Reload      bool          // reload the list before every round
	Grace       time.Duration
	StopTimeout time.Duration
	WaitSlice   time.Duration
	TailLines   int      // log lines shown by status
	Env         []string // extra KEY=VALUE pairs for commands
}

// Default returns the default options.
func Default() Options {
	return Options{
		List:        DefaultList,
		LogDir:      DefaultLogDir,
		Interval:    DefaultInterval,
		Rounds:      1,
		PIDFile:     DefaultPIDFile,
		Grace:       DefaultGrace,
		StopTimeout: DefaultStopTimeout,
		WaitSlice:   DefaultWaitSlice,
		TailLines:   DefaultTailLines,
	}
}

// Validate reports every problem with the options at once.
func (o *Options) Validate() error {
	var result *multierror.Error

	if o.List == "" {
		result = multierror.Append(result, errors.New("command list path is empty"))
	}

	if o.LogDir == "" {
		result = multierror.Append(result, errors.New("log directory is empty"))
	}

	if o.PIDFile == "" {
		result = multierror.Append(result, errors.New("pid file path is empty"))
	}

	if o.Interval < 0 {
		result = multierror.Append(result, fmt.Errorf("interval must not be negative, got %s", o.Interval))
	}

	if o.Rounds < 0 {
		result = multierror.Append(result, fmt.Errorf("round count must not be negative, got %d", o.Rounds))
	}

	if o.Grace < 0 {
		result = multierror.Append(result, fmt.Errorf("grace period must not be negative, got %s", o.Grace))
	}

	if o.StopTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("stop timeout must be positive, got %s", o.StopTimeout))
	}

	if o.WaitSlice <= 0 {
		result = multierror.Append(result, fmt.Errorf("wait slice must be positive, got %s", o.WaitSlice))
	}

	if o.TailLines < 0 {
		result = multierror.Append(result, fmt.Errorf("tail lines must not be negative, got %d", o.TailLines))
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalid, err)
	}

	return nil
}

// Resolve makes every path absolute against BaseDir, which itself defaults to
// the working directory. A remote list source is left untouched.
func (o *Options) Resolve() error {
	base := o.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not determine working directory: %w", err)
		}

		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("could not resolve base directory: %w", err)
	}

	o.BaseDir = base

	if !cmdlist.IsRemote(o.List) {
		o.List = anchor(base, o.List)
	}

	o.LogDir = anchor(base, o.LogDir)
	o.PIDFile = anchor(base, o.PIDFile)

	return nil
}

func anchor(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(base, p)
}

func envPairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m[k])
	}

	return pairs
}
