// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import "errors"

// ErrInvalidPID is returned when signalling a pid that cannot name a process.
var ErrInvalidPID = errors.New("invalid pid")

// ProcessTable queries and signals operating system processes.
type ProcessTable interface {
	// Alive reports whether pid names a running process. pid <= 0 is never alive.
	Alive(pid int) bool
	// Terminate asks the process to stop gracefully.
	Terminate(pid int) error
	// Kill stops the process and its process group immediately.
	Kill(pid int) error
}

// OSProcessTable is the ProcessTable of the host.
type OSProcessTable struct{}

var _ ProcessTable = OSProcessTable{}
