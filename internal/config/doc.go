// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the run options and reads the optional HCL options file.
//
// An options file is a flat set of attributes, for example:
//
//	list          = "commands.txt"
//	log_dir       = "${env.HOME}/sync-logs"
//	interval      = 900
//	stop_timeout  = "45s"
//	command_env   = { GIT_TERMINAL_PROMPT = "0" }
//
// The environment of the calling process is available as the `env` object.
package config
