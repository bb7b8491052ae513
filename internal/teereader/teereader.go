// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// maxPartial bounds the unterminated line kept between reads.
const maxPartial = 4096

// LastLineReader wraps an io.Reader and tracks the last non-empty line read through it.
// It is safe for concurrent use.
type LastLineReader struct {
	reader   io.Reader
	lastLine string
	partial  []byte
	mu       sync.RWMutex
}

// NewLastLineReader creates a new LastLineReader that wraps the given reader.
func NewLastLineReader(r io.Reader) *LastLineReader {
	return &LastLineReader{reader: r}
}

// Read implements io.Reader.
func (lt *LastLineReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.mu.Lock()
		lt.process(p[:n])
		lt.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// process must be called with the write lock held.
func (lt *LastLineReader) process(data []byte) {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lt.partial = append(lt.partial, data...)
			if len(lt.partial) > maxPartial {
				start := len(lt.partial) - maxPartial
				for start < len(lt.partial) && !utf8.RuneStart(lt.partial[start]) {
					start++
				}

				lt.partial = lt.partial[start:]
			}

			return
		}

		line := strings.TrimRight(string(append(lt.partial, data[:i]...)), "\r")
		lt.partial = lt.partial[:0]

		if strings.TrimSpace(line) != "" {
			lt.lastLine = line
		}

		data = data[i+1:]
	}
}

// LastLine returns the last non-empty line read so far. An unterminated trailing line
// counts once it has content. If maxLength > 3, lines longer than maxLength bytes are cut
// at a rune boundary and "..." appended.
func (lt *LastLineReader) LastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	result := lt.lastLine
	if partial := strings.TrimRight(string(lt.partial), "\r"); strings.TrimSpace(partial) != "" {
		result = partial
	}

	if maxLength > 3 && len(result) > maxLength {
		cut := maxLength - 3
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}

		result = result[:cut] + "..."
	}

	return result
}
