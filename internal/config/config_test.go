// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFile(t *testing.T, path, content string) {
	t.Helper()

	memfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memfs, path, []byte(content), 0o644))

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return memfs })
	stubs.Stub(&EnvironFactory, func() []string {
		return []string{"HOME=/home/ops", "SYNC_TOKEN=abc", "BROKEN"}
	})
	t.Cleanup(stubs.Reset)
}

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	require.NoError(t, o.Validate())
	assert.Equal(t, 1, o.Rounds)
	assert.Equal(t, DefaultInterval, o.Interval)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	o := Default()
	o.List = ""
	o.Interval = -time.Second
	o.Rounds = -1
	o.StopTimeout = 0

	err := o.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "command list path is empty")
	assert.Contains(t, err.Error(), "interval must not be negative")
	assert.Contains(t, err.Error(), "round count must not be negative")
	assert.Contains(t, err.Error(), "stop timeout must be positive")
	assert.Contains(t, err.Error(), "4 errors occurred")
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	o := Default()
	o.BaseDir = base
	o.LogDir = "/var/log/syncloop"

	require.NoError(t, o.Resolve())
	assert.Equal(t, filepath.Join(base, DefaultList), o.List)
	assert.Equal(t, "/var/log/syncloop", o.LogDir)
	assert.Equal(t, filepath.Join(base, DefaultPIDFile), o.PIDFile)
}

func TestResolve_RemoteListUntouched(t *testing.T) {
	o := Default()
	o.BaseDir = t.TempDir()
	o.List = "git::https://example.com/ops.git//commands.txt"

	require.NoError(t, o.Resolve())
	assert.Equal(t, "git::https://example.com/ops.git//commands.txt", o.List)
}

func TestResolve_LocalListWithDoubleColonAnchored(t *testing.T) {
	base := t.TempDir()
	o := Default()
	o.BaseDir = base
	o.List = "lists/nightly::v2.txt"

	require.NoError(t, o.Resolve())
	assert.Equal(t, filepath.Join(base, "lists", "nightly::v2.txt"), o.List)
}

func TestResolve_DefaultsToWorkingDirectory(t *testing.T) {
	o := Default()

	require.NoError(t, o.Resolve())
	assert.True(t, filepath.IsAbs(o.BaseDir))
	assert.True(t, filepath.IsAbs(o.List))
}

func TestLoadFile(t *testing.T) {
	stubFile(t, "/etc/syncloop.hcl", `
list         = "mirror-commands.txt"
log_dir      = "${env.HOME}/sync-logs"
interval     = 900
rounds       = 3
reload       = true
stop_timeout = "45s"
command_env = {
  GIT_TERMINAL_PROMPT = "0"
  TOKEN               = env.SYNC_TOKEN
}
`)

	o := Default()
	require.NoError(t, LoadFile("/etc/syncloop.hcl", &o))

	assert.Equal(t, "mirror-commands.txt", o.List)
	assert.Equal(t, "/home/ops/sync-logs", o.LogDir)
	assert.Equal(t, 15*time.Minute, o.Interval)
	assert.Equal(t, 3, o.Rounds)
	assert.True(t, o.Reload)
	assert.Equal(t, 45*time.Second, o.StopTimeout)
	assert.Equal(t, []string{"GIT_TERMINAL_PROMPT=0", "TOKEN=abc"}, o.Env)

	// Unset attributes keep their defaults.
	assert.Equal(t, DefaultPIDFile, o.PIDFile)
	assert.Equal(t, DefaultGrace, o.Grace)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: "list = \n", want: "c.hcl"},
		{name: "unknown attribute", content: "colour = true\n", want: "Unsupported argument"},
		{name: "bad duration", content: "grace = \"soon\"\n", want: "grace"},
		{name: "wrong type", content: "rounds = \"many\"\n", want: "Unsuitable value type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubFile(t, "/c.hcl", tt.content)

			o := Default()
			err := LoadFile("/c.hcl", &o)
			require.ErrorIs(t, err, ErrConfigFile)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	stubFile(t, "/present.hcl", "")

	o := Default()
	assert.ErrorIs(t, LoadFile("/absent.hcl", &o), ErrConfigFile)
}
