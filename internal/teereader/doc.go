// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a reader wrapper that remembers the last non-empty line
// passing through it without buffering the whole stream. Command output can be
// long-lived and large, so only the tail needed for a one-line diagnostic is kept.
package teereader
