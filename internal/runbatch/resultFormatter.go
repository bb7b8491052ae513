// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/syncloop/internal/color"
)

// OutputOptions controls what is included in the round summary.
type OutputOptions struct {
	ShowSuccessDetails bool // Whether to list successful commands as well as failures
	ShowCommandText    bool // Whether to print the command text next to its line number
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		ShowSuccessDetails: true,
		ShowCommandText:    true,
	}
}

// WriteText writes a human readable summary of the round to w.
func (r *BatchResult) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	statusStr, labelPrefix := statusMarks(!r.HasError())

	if _, err := fmt.Fprintf(
		w,
		"%s %sRound %d: %d/%d succeeded%s (%s)\n",
		statusStr,
		labelPrefix,
		r.Round,
		r.Success,
		r.Total,
		color.ControlString(color.Reset),
		r.Duration().Round(time.Millisecond),
	); err != nil {
		return err //nolint:wrapcheck
	}

	for _, o := range r.Outcomes {
		if o.Success && !options.ShowSuccessDetails {
			continue
		}

		if err := writeOutcome(w, o, "  ", options); err != nil {
			return err
		}
	}

	return nil
}

func writeOutcome(w io.Writer, o *Outcome, indent string, options *OutputOptions) error {
	statusStr, labelPrefix := statusMarks(o.Success)

	label := fmt.Sprintf("[%d] line %d", o.Index, o.Line)
	if options.ShowCommandText {
		label += ": " + o.Command
	}

	if _, err := fmt.Fprintf(w, "%s%s %s%s%s", indent, statusStr, labelPrefix, label, color.ControlString(color.Reset)); err != nil {
		return err //nolint:wrapcheck
	}

	if o.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", o.ExitCode) // nolint:errcheck
	}

	fmt.Fprintf(w, " [%s]\n", o.Duration.Round(time.Millisecond)) // nolint:errcheck

	if o.Error != nil {
		fmt.Fprintf( // nolint:errcheck
			w,
			"%s  %s %s%s\n",
			indent,
			color.ColorizeNoReset("➜ Error:", color.FgRed),
			o.Error.Error(),
			color.ControlString(color.Reset),
		)
	}

	if !o.Success && o.LastLine != "" {
		fmt.Fprintf(w, "%s  %s %s\n", indent, color.Colorize("➜ Last output:", color.FgHiRed), o.LastLine) // nolint:errcheck
	}

	return nil
}

func statusMarks(ok bool) (string, string) {
	if ok {
		return color.Colorize("✓", color.FgGreen), color.ControlString(color.Bold, color.FgGreen)
	}

	return color.Colorize("✗", color.FgRed), color.ControlString(color.Bold, color.FgRed)
}
