// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs one round of the command list.
//
// The Executor runs a single command through the host shell and records its Outcome.
// The BatchRunner drives the Executor over the whole list strictly in order, never in
// parallel and never stopping early on failure, because later commands may depend on
// side effects of earlier ones. The resulting BatchResult carries the totals that
// decide the process exit status.
package runbatch
