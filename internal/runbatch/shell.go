// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // System32 is the directory where cmd.exe is located on Windows.
	cmdExe               = "cmd.exe"    // cmdExe is the name of the command interpreter executable on Windows.
	binSh                = "/bin/sh"    // Default shell for Unix-like systems.
	winSystemRootEnv     = "SystemRoot" // Environment variable for Windows system root directory.
	exitCommandNotFound  = 127          // POSIX shells exit 127 when the command does not exist.
)

// DefaultShell returns the host command shell.
func DefaultShell() string {
	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	return binSh
}

// ErrShellNotFound is returned when a shell given by name is not on PATH.
var ErrShellNotFound = errors.New("shell not found")

// ResolveShell returns the binary to launch for shell. An empty shell means
// DefaultShell(). A bare name such as "bash" is looked up on PATH, since the
// process is started without a PATH search. Paths are returned unchanged.
func ResolveShell(shell string) (string, error) {
	if shell == "" {
		return DefaultShell(), nil
	}

	if strings.ContainsAny(shell, `/\`) {
		return shell, nil
	}

	path, err := exec.LookPath(shell)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrShellNotFound, shell, err)
	}

	return path, nil
}

// shellArgv returns the argv, including argv[0], that makes shell interpret command.
func shellArgv(shell, command string) []string {
	if runtime.GOOS == GOOSWindows {
		return []string{shell, commandSwitchWindows, command}
	}

	return []string{shell, commandSwitchUnix, command}
}
