// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color adds ANSI colour to console summaries.
// Colour follows NO_COLOR and FORCE_COLOR, and is otherwise on only when stdout is a terminal.
package color
