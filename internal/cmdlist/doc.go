// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdlist reads the command list: a line-oriented text file with one shell
// command per line. Lines whose first non-whitespace character is `#` are comments,
// lines that are empty after trimming are blank, every other line is executed verbatim.
package cmdlist
