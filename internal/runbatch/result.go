// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"time"
)

var (
	// ErrCouldNotStartProcess is returned when the shell could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrExitStatus is returned when a command exits with a non-zero status.
	ErrExitStatus = errors.New("command exited with non-zero status")
	// ErrCommandNotFound is returned when the shell reports the command does not exist.
	ErrCommandNotFound = errors.New("command not found")
	// ErrAborted is returned for commands killed or skipped because the run was aborted.
	ErrAborted = errors.New("run aborted")
)

// Outcome is the record of a single command execution. It is not modified after Run returns.
type Outcome struct {
	Index     int           // 1-based position in the round
	Line      int           // line number in the command list
	Command   string        // verbatim command text
	ExitCode  int           // process exit code, -1 if it never ran or was killed
	Success   bool          // exit code 0 and no error
	Duration  time.Duration // wall time from launch to exit
	StartedAt time.Time     // launch time
	Error     error         // diagnostic for failures
	LastLine  string        // last non-empty stderr line, for diagnostics
}

// BatchResult aggregates the outcomes of one round.
// Invariant: 0 <= Success <= Total and Total == len(Outcomes).
type BatchResult struct {
	Round     int
	Session   string
	Outcomes  []*Outcome
	Total     int
	Success   int
	StartedAt time.Time
	EndedAt   time.Time
}

// Failed returns the number of failed commands in the round.
func (r *BatchResult) Failed() int {
	return r.Total - r.Success
}

// HasError reports whether any command in the round failed.
func (r *BatchResult) HasError() bool {
	return r.Failed() > 0
}

// Duration returns the wall time of the round.
func (r *BatchResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

func (r *BatchResult) add(o *Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++

	if o.Success {
		r.Success++
	}
}
