// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logsink provides the append-only, date-partitioned run log.
// Each calendar day gets its own file, `<dir>/batch_<YYYYMMDD>.log`.
// Writes are best-effort: a failing disk never fails the caller.
package logsink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	partitionPrefix = "batch_"
	partitionSuffix = ".log"
	partitionLayout = "20060102"
	dirPerm         = 0o755
	filePerm        = 0o644
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ErrLogWrite wraps the underlying error of a failed log write.
var ErrLogWrite = errors.New("failed to write log partition")

// Sink is an io.Writer over the date-partitioned log. It is safe for concurrent use.
type Sink struct {
	ctx     context.Context
	fs      afero.Fs
	dir     string
	clock   clockwork.Clock
	mu      sync.Mutex
	file    afero.File
	day     string
	err     error
	failing bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock sets the clock used to pick the partition.
func WithClock(c clockwork.Clock) Option {
	return func(s *Sink) {
		s.clock = c
	}
}

// New creates a sink writing under dir. Nothing is opened until the first write.
// The context only carries the logger used to report write failures.
func New(ctx context.Context, dir string, opts ...Option) *Sink {
	s := &Sink{
		ctx:   ctx,
		fs:    FsFactory(),
		dir:   dir,
		clock: clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PartitionPath returns the log file used for the calendar day of t.
func PartitionPath(dir string, t time.Time) string {
	return filepath.Join(dir, partitionPrefix+t.Format(partitionLayout)+partitionSuffix)
}

// Write implements io.Writer. It always reports success so that output copying
// and outcome accounting carry on when the disk does not; see Err.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotate(); err != nil {
		s.fail(err)
		return len(p), nil
	}

	if _, err := s.file.Write(p); err != nil {
		s.fail(err)
		return len(p), nil
	}

	s.failing = false

	return len(p), nil
}

// Printf formats according to a format specifier and writes to the sink.
func (s *Sink) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s, format, args...)
}

// Path returns the partition the next write goes to.
func (s *Sink) Path() string {
	return PartitionPath(s.dir, s.clock.Now())
}

// Err returns the most recent write failure, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close closes the open partition.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	s.day = ""

	return err //nolint:wrapcheck
}

// rotate opens the partition for today, closing yesterday's. Must be called with mu held.
func (s *Sink) rotate() error {
	now := s.clock.Now()

	day := now.Format(partitionLayout)
	if s.file != nil && day == s.day {
		return nil
	}

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return err //nolint:wrapcheck
	}

	path := PartitionPath(s.dir, now)

	f, err := s.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.file = f
	s.day = day

	return nil
}

// fail records err and logs it once per run of consecutive failures. Must be called with mu held.
func (s *Sink) fail(err error) {
	s.err = errors.Join(ErrLogWrite, err)
	if s.failing {
		return
	}

	s.failing = true
	ctxlog.Warn(s.ctx, "log write failed, continuing without log", "dir", s.dir, "error", err)
}

// Tail returns the last n lines of the partition for the calendar day of t.
// A missing partition yields no lines and no error.
func Tail(dir string, t time.Time, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := FsFactory().Open(PartitionPath(dir, t))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	defer f.Close() //nolint:errcheck

	ring := make([]string, 0, n)

	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 1024*1024)

	for sc.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}

		ring = append(ring, sc.Text())
	}

	return ring, sc.Err() //nolint:wrapcheck
}
