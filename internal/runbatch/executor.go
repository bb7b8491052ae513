// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/matt-FFFFFF/syncloop/internal/cmdlist"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/teereader"
)

const (
	// outputDrainTimeout bounds how long output is read after the shell exits,
	// in case a backgrounded grandchild keeps the pipes open.
	outputDrainTimeout = 5 * time.Second
	lastLineMaxLength  = 200
)

// Executor runs single commands through the host shell.
// No timeout is imposed: a command that never exits blocks its caller.
type Executor struct {
	Shell   string          // Shell binary or name on PATH, defaults to DefaultShell()
	Dir     string          // Working directory of every command
	Env     []string        // Extra KEY=VALUE pairs appended to the inherited environment
	Verbose bool            // Stream command output to Console as well as the sink
	Console io.Writer       // Destination for verbose streaming, defaults to os.Stdout
	Clock   clockwork.Clock // Defaults to the real clock
}

func (e *Executor) clock() clockwork.Clock {
	if e.Clock == nil {
		return clockwork.NewRealClock()
	}

	return e.Clock
}

// Run executes cmd and appends its stdout and stderr to sink.
// Launch failures are reported in the Outcome, never as a panic or error return.
// If ctx is cancelled while the command runs, the shell process is killed.
func (e *Executor) Run(ctx context.Context, index int, cmd cmdlist.Command, sink io.Writer) *Outcome {
	logger := ctxlog.Logger(ctx).With("index", index, "line", cmd.Line)

	res := &Outcome{
		Index:     index,
		Line:      cmd.Line,
		Command:   cmd.Text,
		ExitCode:  -1,
		StartedAt: e.clock().Now(),
	}

	if ctx.Err() != nil {
		res.Error = ErrAborted
		return res
	}

	shell, err := ResolveShell(e.Shell)
	if err != nil {
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		fmt.Fprintf(sink, "could not start process: %v\n", err) //nolint:errcheck

		return res
	}

	dst := sink
	if e.Verbose {
		console := e.Console
		if console == nil {
			console = os.Stdout
		}

		dst = io.MultiWriter(sink, bestEffort{console})
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.Error = errors.Join(ErrFailedToCreatePipe, err)
		return res
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()
		res.Error = errors.Join(ErrFailedToCreatePipe, err)

		return res
	}

	logger.Debug("starting process", "shell", shell, "cwd", e.Dir, "command", cmd.Text)

	ps, err := os.StartProcess(shell, shellArgv(shell, cmd.Text), &os.ProcAttr{
		Dir:   e.Dir,
		Env:   append(os.Environ(), e.Env...),
		Files: []*os.File{os.Stdin, wOut, wErr},
	})

	// The child holds its own copies of the write ends.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		res.Duration = e.clock().Since(res.StartedAt)
		fmt.Fprintf(sink, "could not start process: %v\n", err) //nolint:errcheck
		logger.Debug("could not start process", "error", err)

		return res
	}

	logger.Debug("process started", "pid", ps.Pid)

	stderrTail := teereader.NewLastLineReader(rErr)

	var copiers sync.WaitGroup

	copiers.Add(2)

	go copyOutput(&copiers, dst, rOut)
	go copyOutput(&copiers, dst, stderrTail)

	// This is the process watchdog that kills the shell when the run is aborted.
	done := make(chan struct{})
	watchdogDone := make(chan struct{})
	killed := false

	go func() {
		defer close(watchdogDone)

		select {
		case <-ctx.Done():
			logger.Info("context done, killing process", "pid", ps.Pid)
			killed = killPs(ctx, ps)
		case <-done:
		}
	}()

	state, psErr := ps.Wait()
	res.Duration = e.clock().Since(res.StartedAt)

	close(done)
	<-watchdogDone

	drained := make(chan struct{})

	go func() {
		copiers.Wait()
		close(drained)
	}()

	drainTimer := time.NewTimer(outputDrainTimeout)
	defer drainTimer.Stop()

	select {
	case <-drained:
	case <-drainTimer.C:
		logger.Warn("output still open after process exit, closing pipes", "pid", ps.Pid)
		_ = rOut.Close()
		_ = rErr.Close()
		<-drained
	}

	_ = rOut.Close()
	_ = rErr.Close()

	res.LastLine = stderrTail.LastLine(lastLineMaxLength)

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	switch {
	case killed:
		res.Error = errors.Join(ErrAborted, ctx.Err())
		res.ExitCode = -1
	case psErr != nil:
		res.Error = psErr
		res.ExitCode = -1
	case res.ExitCode == 0:
		res.Success = true
	case res.ExitCode == exitCommandNotFound && runtime.GOOS != GOOSWindows:
		res.Error = fmt.Errorf("%w: exit status %d", ErrCommandNotFound, res.ExitCode)
	case res.ExitCode < 0:
		res.Error = fmt.Errorf("%w: %s", ErrExitStatus, state.String())
	default:
		res.Error = fmt.Errorf("%w: exit status %d", ErrExitStatus, res.ExitCode)
	}

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration)

	return res
}

// bestEffort drops write errors so a closed console never stalls the pipe copy.
type bestEffort struct {
	w io.Writer
}

func (b bestEffort) Write(p []byte) (int, error) {
	_, _ = b.w.Write(p)
	return len(p), nil
}

func copyOutput(wg *sync.WaitGroup, dst io.Writer, src io.Reader) {
	defer wg.Done()

	_, _ = io.Copy(dst, src)
}

// killPs kills the process and reports whether it was still running.
func killPs(ctx context.Context, ps *os.Process) bool {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return false
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)

		return false
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)

	return true
}
