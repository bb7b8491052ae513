// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/runbatch"
)

// DefaultMaxWaitSlice is the longest uninterrupted sleep between two stop checks.
const DefaultMaxWaitSlice = 60 * time.Second

// maxExitCode keeps failure counts clear of the codes shells reserve.
const maxExitCode = 124

// ErrNoRunner is returned when the scheduler has nothing to run rounds with.
var ErrNoRunner = errors.New("scheduler has no round runner or loader")

// State is the scheduler lifecycle state.
type State int32

const (
	// Idle is the state before Run is called.
	Idle State = iota
	// RunningRound is the state while a round executes.
	RunningRound
	// Waiting is the state during the interval between rounds.
	Waiting
	// Done is the state after Run returns.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RunningRound:
		return "running"
	case Waiting:
		return "waiting"
	case Done:
		return "done"
	}

	return fmt.Sprintf("State(%d)", int32(s))
}

// Policy says how many rounds to run and how long to wait between them.
type Policy struct {
	Rounds       int           // 0 runs forever
	Interval     time.Duration // pause between rounds, never after the last one
	MaxWaitSlice time.Duration // defaults to DefaultMaxWaitSlice
	Reload       bool          // load the command list again before every round
}

// RoundRunner runs one round. *runbatch.BatchRunner implements it.
type RoundRunner interface {
	RunOnce(ctx context.Context, round int, commands []cmdlist.Command, sink io.Writer) *runbatch.BatchResult
}

var _ RoundRunner = (*runbatch.BatchRunner)(nil)

// Loader returns the executable commands of the list.
type Loader func() ([]cmdlist.Command, error)

// Scheduler drives rounds of a RoundRunner.
type Scheduler struct {
	Policy  Policy
	Runner  RoundRunner
	Loader  Loader
	Sink    io.Writer
	Clock   clockwork.Clock
	OnRound func(res *runbatch.BatchResult, sum *Summary) // called after every round

	state atomic.Int32
}

// NewSession returns a fresh session identifier for round headers and the PID record.
func NewSession() string {
	return uuid.NewString()
}

// State returns the current lifecycle state. It is safe to call from any goroutine.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
}

// Run executes rounds until the policy is satisfied, stop is closed or ctx is cancelled.
// The command list is loaded once up front and a load failure is returned before any round runs.
// The returned error is only ever a load or setup error; command failures are counted in the Summary.
func (s *Scheduler) Run(ctx context.Context, stop <-chan struct{}) (*Summary, error) {
	if s.Runner == nil || s.Loader == nil {
		return nil, ErrNoRunner
	}

	defer s.setState(Done)

	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sink := s.Sink
	if sink == nil {
		sink = io.Discard
	}

	commands, err := s.Loader()
	if err != nil {
		return nil, err
	}

	sum := &Summary{}

	for round := 1; s.Policy.Rounds == 0 || round <= s.Policy.Rounds; round++ {
		if stopRequested(ctx, stop) {
			ctxlog.Info(ctx, "stop requested, not starting next round", "round", round)

			sum.Stopped = true

			break
		}

		if s.Policy.Reload && round > 1 {
			commands = s.reload(ctx, commands)
		}

		s.setState(RunningRound)

		res := s.Runner.RunOnce(ctx, round, commands, sink)
		sum.add(res)

		if s.OnRound != nil {
			s.OnRound(res, sum)
		}

		if s.Policy.Rounds != 0 && round == s.Policy.Rounds {
			break
		}

		if ctx.Err() != nil {
			sum.Stopped = true
			break
		}

		if s.Policy.Interval <= 0 {
			continue
		}

		s.setState(Waiting)
		sum.Waits++

		next := clock.Now().Add(s.Policy.Interval)
		fmt.Fprintf(sink, "WAIT %s next round at %s\n", s.Policy.Interval, next.Format(time.RFC3339)) //nolint:errcheck
		ctxlog.Debug(ctx, "waiting for next round", "interval", s.Policy.Interval, "next", next)

		if !s.wait(ctx, stop, clock) {
			ctxlog.Info(ctx, "stop requested during wait")

			sum.Stopped = true

			break
		}
	}

	return sum, nil
}

func (s *Scheduler) reload(ctx context.Context, previous []cmdlist.Command) []cmdlist.Command {
	commands, err := s.Loader()
	if err != nil {
		ctxlog.Warn(ctx, "could not reload command list, reusing previous list", "error", err)
		return previous
	}

	return commands
}

// wait sleeps for the policy interval in slices and reports false if it was interrupted.
func (s *Scheduler) wait(ctx context.Context, stop <-chan struct{}, clock clockwork.Clock) bool {
	slice := s.Policy.MaxWaitSlice
	if slice <= 0 {
		slice = DefaultMaxWaitSlice
	}

	for remaining := s.Policy.Interval; remaining > 0; remaining -= slice {
		d := min(remaining, slice)
		timer := clock.NewTimer(d)

		select {
		case <-stop:
			timer.Stop()
			return false
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.Chan():
		}
	}

	return !stopRequested(ctx, stop)
}

func stopRequested(ctx context.Context, stop <-chan struct{}) bool {
	if ctx.Err() != nil {
		return true
	}

	select {
	case <-stop:
		return true
	default:
		return false
	}
}
