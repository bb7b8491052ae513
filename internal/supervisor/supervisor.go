// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
)

const (
	// DefaultGrace is how long a new worker must survive before it is recorded.
	DefaultGrace = time.Second
	// DefaultStopTimeout is how long Stop waits after SIGTERM before it sends SIGKILL.
	DefaultStopTimeout = 30 * time.Second
	// DefaultPollInterval is how often Stop checks whether the worker has gone.
	DefaultPollInterval = 200 * time.Millisecond
	// killWait bounds the wait for the process to vanish after SIGKILL.
	killWait = 5 * time.Second
)

var (
	// ErrStartFailed is returned when the worker could not be confirmed alive after launch.
	ErrStartFailed = errors.New("daemon failed to start")
	// ErrStopFailed is returned when the worker survived SIGKILL or its record could not be removed.
	ErrStopFailed = errors.New("daemon failed to stop")
)

// AlreadyRunningError is returned by Start when a live worker is already recorded.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("daemon already running with pid %d", e.PID)
}

// StopResult says how Stop ended.
type StopResult int

const (
	// NotRunning means there was no live worker to stop.
	NotRunning StopResult = iota
	// Stopped means the worker exited after SIGTERM.
	Stopped
	// Killed means the worker had to be killed.
	Killed
)

func (r StopResult) String() string {
	switch r {
	case NotRunning:
		return "not running"
	case Stopped:
		return "stopped"
	case Killed:
		return "killed"
	}

	return fmt.Sprintf("StopResult(%d)", int(r))
}

// Status is the reconciled daemon state.
type Status struct {
	Running bool
	State   *State // nil when not running
}

// Supervisor starts, stops and reports on the background worker.
type Supervisor struct {
	Store        *Store
	Procs        ProcessTable
	Spawner      Spawner
	Clock        clockwork.Clock
	Grace        time.Duration
	StopTimeout  time.Duration
	PollInterval time.Duration
}

// New returns a supervisor for the record at pidFile using the host process table.
func New(pidFile string, spawner Spawner) *Supervisor {
	return &Supervisor{
		Store:        NewStore(pidFile),
		Procs:        OSProcessTable{},
		Spawner:      spawner,
		Clock:        clockwork.NewRealClock(),
		Grace:        DefaultGrace,
		StopTimeout:  DefaultStopTimeout,
		PollInterval: DefaultPollInterval,
	}
}

func (s *Supervisor) clock() clockwork.Clock {
	if s.Clock == nil {
		return clockwork.NewRealClock()
	}

	return s.Clock
}

// reconcile returns the live recorded state, or nil after purging a stale or corrupt record.
func (s *Supervisor) reconcile(ctx context.Context) (*State, error) {
	st, err := s.Store.Load()

	switch {
	case errors.Is(err, ErrNoRecord):
		return nil, nil
	case errors.Is(err, ErrCorruptRecord):
		ctxlog.Warn(ctx, "removing unreadable pid record", "path", s.Store.Path(), "error", err)
		return nil, s.Store.Remove()
	case err != nil:
		return nil, err
	}

	if !s.Procs.Alive(st.PID) {
		ctxlog.Info(ctx, "removing stale pid record", "path", s.Store.Path(), "pid", st.PID)
		return nil, s.Store.Remove()
	}

	return st, nil
}

// Status reports whether a worker is running.
func (s *Supervisor) Status(ctx context.Context) (*Status, error) {
	st, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	return &Status{Running: st != nil, State: st}, nil
}

// Start launches a worker and records it. The record is only written once the
// worker has survived the grace period, so a worker that dies on launch leaves nothing behind.
func (s *Supervisor) Start(ctx context.Context, want State) (*State, error) {
	cur, err := s.reconcile(ctx)
	if err != nil {
		return nil, err
	}

	if cur != nil {
		return nil, &AlreadyRunningError{PID: cur.PID}
	}

	w, err := s.Spawner.Spawn(ctx)
	if err != nil {
		return nil, errors.Join(ErrStartFailed, err)
	}

	logger := ctxlog.Logger(ctx).With("pid", w.PID)
	logger.Debug("worker spawned, waiting for grace period", "grace", s.Grace)

	select {
	case <-w.Exited:
		return nil, fmt.Errorf("%w: worker exited during the grace period", ErrStartFailed)
	case <-ctx.Done():
		_ = s.Procs.Kill(w.PID)
		return nil, errors.Join(ErrStartFailed, ctx.Err())
	case <-s.clock().After(s.Grace):
	}

	if exited(w) || !s.Procs.Alive(w.PID) {
		return nil, fmt.Errorf("%w: worker is not alive after the grace period", ErrStartFailed)
	}

	want.PID = w.PID
	want.StartedAt = s.clock().Now()

	if err := s.Store.Create(&want); err != nil {
		logger.Warn("could not record worker, killing it", "error", err)

		_ = s.Procs.Kill(w.PID)

		if errors.Is(err, ErrRecordExists) {
			if other, lerr := s.Store.Load(); lerr == nil {
				return nil, &AlreadyRunningError{PID: other.PID}
			}

			return nil, &AlreadyRunningError{}
		}

		return nil, errors.Join(ErrStartFailed, err)
	}

	logger.Info("daemon started", "record", s.Store.Path())

	return &want, nil
}

// Stop asks the worker to stop and waits up to StopTimeout before killing it.
// It is idempotent: with no live worker it returns NotRunning.
func (s *Supervisor) Stop(ctx context.Context) (StopResult, error) {
	st, err := s.reconcile(ctx)
	if err != nil {
		return NotRunning, err
	}

	if st == nil {
		return NotRunning, nil
	}

	logger := ctxlog.Logger(ctx).With("pid", st.PID)
	logger.Info("stopping daemon")

	if err := s.Procs.Terminate(st.PID); err != nil && s.Procs.Alive(st.PID) {
		logger.Warn("could not signal daemon", "error", err)
	}

	if s.waitGone(ctx, st.PID, s.StopTimeout) {
		return Stopped, s.Store.Remove()
	}

	if ctx.Err() != nil {
		return NotRunning, ctx.Err() //nolint:wrapcheck
	}

	logger.Warn("daemon did not stop in time, killing its process group", "timeout", s.StopTimeout)

	var merr *multierror.Error

	if err := s.Procs.Kill(st.PID); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("kill: %w", err))
	}

	if !s.waitGone(ctx, st.PID, killWait) {
		merr = multierror.Append(merr, fmt.Errorf("process %d still alive after kill", st.PID))
	}

	if err := s.Store.Remove(); err != nil {
		merr = multierror.Append(merr, err)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return Killed, errors.Join(ErrStopFailed, err)
	}

	return Killed, nil
}

// Release removes the record if it still names pid. The worker calls it on exit.
func (s *Supervisor) Release(ctx context.Context, pid int) error {
	st, err := s.Store.Load()
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil
		}

		return err
	}

	if st.PID != pid {
		ctxlog.Debug(ctx, "pid record belongs to another process, leaving it", "pid", st.PID)
		return nil
	}

	return s.Store.Remove()
}

// waitGone polls until pid is gone or timeout elapses, and reports whether it is gone.
func (s *Supervisor) waitGone(ctx context.Context, pid int, timeout time.Duration) bool {
	clock := s.clock()

	poll := s.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	ticker := clock.NewTicker(poll)
	defer ticker.Stop()

	deadline := clock.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if !s.Procs.Alive(pid) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-deadline.Chan():
			return !s.Procs.Alive(pid)
		case <-ticker.Chan():
		}
	}
}

func exited(w *Worker) bool {
	select {
	case <-w.Exited:
		return true
	default:
		return false
	}
}
