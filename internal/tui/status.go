// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/syncloop/internal/supervisor"
)

const labelWidth = 11

// StatusView is everything shown by the status command.
type StatusView struct {
	Status  *supervisor.Status
	PIDFile string
	LogPath string
	Tail    []string
	Now     time.Time
}

// RenderStatus returns the status panel followed by the log tail.
func RenderStatus(v StatusView, s Styles) string {
	var rows []string

	if v.Status != nil && v.Status.Running {
		st := v.Status.State
		rows = append(rows,
			s.Title.Render("syncloop daemon")+"  "+s.Running.Render("running"),
			row(s, "pid", fmt.Sprintf("%d", st.PID)),
		)

		if !st.StartedAt.IsZero() {
			rows = append(rows, row(s, "started", fmt.Sprintf("%s (up %s)",
				st.StartedAt.Local().Format(time.RFC3339), v.Now.Sub(st.StartedAt).Round(time.Second))))
		}

		rows = appendIfSet(rows, s, "session", st.Session)
		rows = appendIfSet(rows, s, "list", st.List)

		if st.Interval > 0 {
			rows = append(rows, row(s, "interval", st.Interval.String()))
		}

		rows = appendIfSet(rows, s, "log dir", st.LogDir)
	} else {
		rows = append(rows, s.Title.Render("syncloop daemon")+"  "+s.Stopped.Render("not running"))
	}

	rows = appendIfSet(rows, s, "pid file", v.PIDFile)

	out := s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	if v.LogPath == "" {
		return out + "\n"
	}

	var b strings.Builder

	b.WriteString(out)
	b.WriteString("\n")

	if len(v.Tail) == 0 {
		b.WriteString(s.Muted.Render("no log output today in " + v.LogPath))
		b.WriteString("\n")

		return b.String()
	}

	b.WriteString(s.Muted.Render(fmt.Sprintf("last %d line(s) of %s", len(v.Tail), v.LogPath)))
	b.WriteString("\n")

	for _, line := range v.Tail {
		b.WriteString(styleLogLine(s, line))
		b.WriteString("\n")
	}

	return b.String()
}

func row(s Styles, label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value)
}

func appendIfSet(rows []string, s Styles, label, value string) []string {
	if value == "" {
		return rows
	}

	return append(rows, row(s, label, value))
}

// styleLogLine colours the run log's result lines.
func styleLogLine(s Styles, line string) string {
	switch {
	case strings.HasPrefix(line, "RESULT ") && strings.Contains(line, " SUCCESS "):
		return s.Success.Render(line)
	case strings.HasPrefix(line, "RESULT ") && strings.Contains(line, " FAILURE "):
		return s.Failed.Render(line)
	default:
		return s.Output.Render(line)
	}
}
