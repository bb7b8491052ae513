// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scheduler repeats a batch round according to a round count and interval policy.
//
// The wait between rounds is cut into bounded slices so that a stop request
// is observed promptly. A stop request never interrupts a round in progress;
// it ends the loop before the next round starts.
package scheduler
