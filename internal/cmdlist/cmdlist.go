// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdlist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrConfig is wrapped by every command list validation error.
	ErrConfig = errors.New("invalid command list")
	// ErrNotFound is returned when the command list does not exist.
	ErrNotFound = fmt.Errorf("%w: file not found", ErrConfig)
	// ErrUnreadable is returned when the command list cannot be read.
	ErrUnreadable = fmt.Errorf("%w: file not readable", ErrConfig)
	// ErrEmpty is returned when the command list has zero bytes.
	ErrEmpty = fmt.Errorf("%w: file is empty", ErrConfig)
	// ErrNoExecutableLines is returned when every line is blank or a comment.
	ErrNoExecutableLines = fmt.Errorf("%w: no executable lines", ErrConfig)
)

// LineKind classifies a line of the command list.
type LineKind int

const (
	// Executable lines are passed to the shell unmodified.
	Executable LineKind = iota
	// Comment lines start with `#` after leading whitespace.
	Comment
	// Blank lines are empty after trimming.
	Blank
)

// String implements fmt.Stringer.
func (k LineKind) String() string {
	switch k {
	case Comment:
		return "comment"
	case Blank:
		return "blank"
	default:
		return "executable"
	}
}

// Command is one executable line of the command list.
type Command struct {
	Line int    // 1-based line number in the file
	Text string // verbatim line text
}

// Classify returns the kind of a single line.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return Blank
	case strings.HasPrefix(trimmed, "#"):
		return Comment
	default:
		return Executable
	}
}

// Parse returns the executable lines of data in order, tagged with their line numbers.
func Parse(data []byte) []Command {
	var cmds []Command

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(nil, len(data)+bufio.MaxScanTokenSize)

	n := 0
	for sc.Scan() {
		n++

		line := strings.TrimSuffix(sc.Text(), "\r")
		if Classify(line) != Executable {
			continue
		}

		cmds = append(cmds, Command{Line: n, Text: line})
	}

	return cmds
}

// Validate checks the command list at path and returns the number of executable lines.
func Validate(path string) (int, error) {
	cmds, err := Load(path)
	if err != nil {
		return 0, err
	}

	return len(cmds), nil
}

// Load validates the command list at path and returns its executable lines in file order.
func Load(path string) ([]Command, error) {
	data, err := read(FsFactory(), path)
	if err != nil {
		return nil, err
	}

	cmds := Parse(data)
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExecutableLines, path)
	}

	return cmds, nil
}

func read(afs afero.Fs, path string) ([]byte, error) {
	info, err := afs.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case err != nil:
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrUnreadable, path), err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	case info.Size() == 0:
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrUnreadable, path), err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	return data, nil
}
