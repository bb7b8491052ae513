// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/options"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
	"github.com/matt-FFFFFF/syncloop/internal/logsink"
	"github.com/matt-FFFFFF/syncloop/internal/tui"
	"github.com/urfave/cli/v3"
)

// StatusCmd reports whether the daemon is running and shows the end of today's log.
var StatusCmd = &cli.Command{
	Name:   "status",
	Usage:  "Show whether the background daemon is running, with the end of today's log",
	Flags:  options.Shared(),
	Action: statusAction,
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	status, err := newSupervisor(opts, nil).Status(ctx)
	if err != nil {
		return options.Fatal(err)
	}

	// The running daemon's log directory wins over the one given to this command.
	logDir := opts.LogDir
	if status.Running && status.State.LogDir != "" {
		logDir = status.State.LogDir
	}

	now := time.Now()

	tail, err := logsink.Tail(logDir, now, opts.TailLines)
	if err != nil {
		ctxlog.Warn(ctx, "could not read log", "dir", logDir, "error", err)
	}

	fmt.Fprint(cmd.Root().Writer, tui.RenderStatus(tui.StatusView{ //nolint:errcheck
		Status:  status,
		PIDFile: opts.PIDFile,
		LogPath: logsink.PartitionPath(logDir, now),
		Tail:    tail,
		Now:     now,
	}, tui.NewStyles()))

	return nil
}
