// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
	reset      = "\033[0m"
	prefix     = "\033["
	suffix     = "m"
)

// Code represents an ANSI control code for text formatting.
type Code int

// Control codes.
const (
	Reset  Code = 0
	Bold   Code = 1
	Faint  Code = 2
	Italic Code = 3
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = isColorCapable()
}

// SetEnabled overrides the detected setting.
func SetEnabled(v bool) {
	enabled = v
}

// Enabled reports whether color output is on. It is detected at start-up:
// NO_COLOR turns it off, FORCE_COLOR turns it on, otherwise it is on when stdout is a terminal.
func Enabled() bool {
	return enabled
}

// ControlString returns the escape sequence for codes, or "" when color is off.
func ControlString(codes ...Code) string {
	if !enabled {
		return ""
	}

	var sb strings.Builder

	writeSequence(&sb, codes)

	return sb.String()
}

// Colorize wraps str in the escape sequence for codes followed by a reset.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	var sb strings.Builder

	sb.Grow(len(str) + len(reset) + len(prefix) + len(suffix) + 3*len(codes))
	writeSequence(&sb, codes)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ColorizeNoReset is Colorize without the trailing reset, so the style runs on.
func ColorizeNoReset(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	var sb strings.Builder

	writeSequence(&sb, codes)
	sb.WriteString(str)

	return sb.String()
}

func writeSequence(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
