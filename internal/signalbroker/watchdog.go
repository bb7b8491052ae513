// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"

	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
)

// Stopper is a one-shot graceful stop token.
// The channel returned by Done is closed on the first call to Stop.
type Stopper struct {
	ch   chan struct{}
	once sync.Once
}

// NewStopper returns an armed stop token.
func NewStopper() *Stopper {
	return &Stopper{ch: make(chan struct{})}
}

// Stop requests a graceful stop. It is safe to call more than once.
func (s *Stopper) Stop() {
	s.once.Do(func() { close(s.ch) })
}

// Done returns a channel that is closed once Stop has been called.
func (s *Stopper) Done() <-chan struct{} {
	return s.ch
}

// Watch monitors the signal channel and handles signals.
// The first signal of any type requests a graceful stop.
// The second signal of a type already received cancels the context.
func Watch(ctx context.Context, sigCh chan os.Signal, stop *Stopper, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, seen := sigMap[sig]; seen {
				ctxlog.Logger(ctx).Warn("watchdog",
					"detail", "received second signal of type, forcefully terminating", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Logger(ctx).Warn("watchdog",
				"detail", "received signal, stopping after the current command", "signal", sig.String())

			sigMap[sig] = struct{}{}

			stop.Stop()
		}
	}
}

type stopperKey struct{}

// WithStopper returns a context carrying the stop token.
func WithStopper(ctx context.Context, s *Stopper) context.Context {
	return context.WithValue(ctx, stopperKey{}, s)
}

// StopperFrom returns the stop token in ctx. Without one it returns a token that is never stopped.
func StopperFrom(ctx context.Context) *Stopper {
	if s, ok := ctx.Value(stopperKey{}).(*Stopper); ok && s != nil {
		return s
	}

	return NewStopper()
}
