// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// State is the content of the PID record.
type State struct {
	PID       int           `yaml:"pid"`
	StartedAt time.Time     `yaml:"started_at"`
	Session   string        `yaml:"session,omitempty"`
	List      string        `yaml:"list,omitempty"`
	Interval  time.Duration `yaml:"interval,omitempty"`
	Rounds    int           `yaml:"rounds"`
	LogDir    string        `yaml:"log_dir,omitempty"`
	BaseDir   string        `yaml:"base_dir,omitempty"`
}

// Marshal encodes the state as YAML.
func (s *State) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pid record: %w", err)
	}

	return b, nil
}

// ParseState decodes a PID record. A record holding only an integer is read as a bare PID.
func ParseState(data []byte) (*State, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorruptRecord)
	}

	if pid, err := strconv.Atoi(string(trimmed)); err == nil {
		return &State{PID: pid}, nil
	}

	st := new(State)
	if err := yaml.Unmarshal(trimmed, st); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return st, nil
}
