// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package supervisor

import "os"

// Alive reports whether a handle to pid can be opened.
func (OSProcessTable) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	_ = p.Release()

	return true
}

// Terminate kills the process; Windows has no SIGTERM to deliver.
func (t OSProcessTable) Terminate(pid int) error {
	return t.Kill(pid)
}

// Kill terminates the process.
func (OSProcessTable) Kill(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return p.Kill() //nolint:wrapcheck
}
