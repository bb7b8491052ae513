// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
)

const (
	roundRule   = "================================================================================"
	commandRule = "--------------------------------------------------------------------------------"
	timeLayout  = time.RFC3339
)

// CommandRunner runs a single command. *Executor implements it.
type CommandRunner interface {
	Run(ctx context.Context, index int, cmd cmdlist.Command, sink io.Writer) *Outcome
}

var _ CommandRunner = (*Executor)(nil)

// BatchRunner runs a whole command list for one round.
type BatchRunner struct {
	Runner  CommandRunner
	Session string // written into the round header
	Clock   clockwork.Clock
}

// RunOnce executes every command in order, one at a time, and returns the round totals.
// A failing command never stops the round. If ctx is cancelled, the command in flight is
// killed and the remaining ones are recorded as aborted without being started, so
// Total always equals len(commands).
func (b *BatchRunner) RunOnce(ctx context.Context, round int, commands []cmdlist.Command, sink io.Writer) *BatchResult {
	clock := b.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	logger := ctxlog.Logger(ctx).With("round", round)

	res := &BatchResult{
		Round:     round,
		Session:   b.Session,
		Outcomes:  make([]*Outcome, 0, len(commands)),
		StartedAt: clock.Now(),
	}

	writeRoundHeader(sink, res, len(commands))
	logger.Info("round started", "commands", len(commands))

	total := len(commands)

	for i, cmd := range commands {
		index := i + 1

		writeCommandHeader(sink, index, total, cmd)

		var o *Outcome

		if ctx.Err() != nil {
			o = &Outcome{
				Index:     index,
				Line:      cmd.Line,
				Command:   cmd.Text,
				ExitCode:  -1,
				StartedAt: clock.Now(),
				Error:     ErrAborted,
			}
		} else {
			out := &lineEndTracker{w: sink}
			o = b.Runner.Run(ctx, index, cmd, out)
			out.terminate()
		}

		writeCommandFooter(sink, index, total, o)
		res.add(o)

		if o.Success {
			logger.Info("command succeeded", "index", index, "line", o.Line, "duration", o.Duration)
		} else {
			logger.Warn("command failed", "index", index, "line", o.Line, "exitCode", o.ExitCode, "error", o.Error)
		}
	}

	res.EndedAt = clock.Now()

	writeRoundFooter(sink, res)
	logger.Info("round finished", "total", res.Total, "success", res.Success, "failed", res.Failed())

	return res
}

func writeRoundHeader(w io.Writer, r *BatchResult, n int) {
	fmt.Fprintf(w, "%s\nROUND %d START %s session=%s commands=%d\n%s\n", //nolint:errcheck
		roundRule, r.Round, r.StartedAt.Format(timeLayout), sessionOrDash(r.Session), n, roundRule)
}

func writeRoundFooter(w io.Writer, r *BatchResult) {
	fmt.Fprintf(w, "%s\nROUND %d END %s total=%d success=%d failed=%d duration=%s\n%s\n", //nolint:errcheck
		roundRule, r.Round, r.EndedAt.Format(timeLayout), r.Total, r.Success, r.Failed(),
		r.Duration().Round(time.Millisecond), roundRule)
}

func writeCommandHeader(w io.Writer, index, total int, cmd cmdlist.Command) {
	fmt.Fprintf(w, "%s\nCOMMAND [%d/%d] line=%d\n$ %s\n", commandRule, index, total, cmd.Line, cmd.Text) //nolint:errcheck
}

func writeCommandFooter(w io.Writer, index, total int, o *Outcome) {
	status := "SUCCESS"
	if !o.Success {
		status = "FAILURE"
	}

	fmt.Fprintf(w, "RESULT [%d/%d] %s exit=%d duration=%s", //nolint:errcheck
		index, total, status, o.ExitCode, o.Duration.Round(time.Millisecond))

	if o.Error != nil {
		fmt.Fprintf(w, " error=%q", strings.ReplaceAll(o.Error.Error(), "\n", "; ")) //nolint:errcheck
	}

	fmt.Fprintln(w) //nolint:errcheck
}

// lineEndTracker makes sure the command footer starts on its own line
// when command output does not end with a newline.
type lineEndTracker struct {
	w       io.Writer
	mu      sync.Mutex
	pending bool
}

func (l *lineEndTracker) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(p) > 0 {
		l.pending = p[len(p)-1] != '\n'
	}

	return l.w.Write(p) //nolint:wrapcheck
}

func (l *lineEndTracker) terminate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending {
		fmt.Fprintln(l.w) //nolint:errcheck
		l.pending = false
	}
}

func sessionOrDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
