// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package supervisor

import "syscall"

// detachedAttr puts the worker in its own session, so it has no controlling
// terminal and leads a process group that its commands inherit.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
