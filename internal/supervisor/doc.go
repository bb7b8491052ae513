// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor manages the single background worker.
//
// The worker is tracked through a PID record on disk. Every operation first
// reconciles the record with the process table: a record whose process is
// gone is stale and is deleted before anything else happens.
package supervisor
