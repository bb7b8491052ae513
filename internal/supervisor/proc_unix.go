// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Alive sends signal 0 to pid. EPERM means the process exists but belongs to someone else.
func (OSProcessTable) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	err := unix.Kill(pid, 0)

	return err == nil || errors.Is(err, unix.EPERM)
}

// Terminate sends SIGTERM to the worker only, leaving its running command alone.
func (OSProcessTable) Terminate(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}

	return unix.Kill(pid, unix.SIGTERM) //nolint:wrapcheck
}

// Kill sends SIGKILL to the process group led by pid, falling back to pid alone.
func (OSProcessTable) Kill(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}

	if err := unix.Kill(-pid, unix.SIGKILL); err == nil {
		return nil
	}

	return unix.Kill(pid, unix.SIGKILL) //nolint:wrapcheck
}
