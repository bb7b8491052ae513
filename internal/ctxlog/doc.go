// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger that can be used to log messages.
// It uses the slog package for structured logging and supports different log levels.
//
// The default is a pretty console handler to format the log messages in a human-readable way.
// The level is read from the SYNCLOOP_LOG_LEVEL environment variable, which can be set to
// "DEBUG", "INFO", "WARN" or "ERROR". Any other value defaults to "WARN".
package ctxlog
