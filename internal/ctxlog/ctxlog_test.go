// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		setupContext  func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			setupContext: func() context.Context {
				return New(context.Background(), NewPlain(&bytes.Buffer{}))
			},
			expectDefault: false,
		},
		{
			name:          "context without logger",
			setupContext:  context.Background,
			expectDefault: true,
		},
		{
			name: "context with nil logger uses default",
			setupContext: func() context.Context {
				return New(context.Background(), nil)
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.setupContext())
			require.NotNil(t, logger)

			if tt.expectDefault {
				assert.Same(t, DefaultLogger, logger)
			} else {
				assert.NotSame(t, DefaultLogger, logger)
			}
		})
	}
}

func TestNewPlain_WritesWithoutColour(t *testing.T) {
	prev := LevelVar.Level()
	defer LevelVar.Set(prev)

	LevelVar.Set(slog.LevelInfo)

	buf := &bytes.Buffer{}
	ctx := New(context.Background(), NewPlain(buf))

	Info(ctx, "round finished", "round", 3)
	Debug(ctx, "hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO: round finished")
	assert.Contains(t, out, `"round": 3`)
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\033[")
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value   string
		want    slog.Level
		wantSet bool
	}{
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"WARN", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"", slog.LevelWarn, false},
		{"chatty", slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(LevelEnvVar, tt.value)

			got, ok := levelFromEnv()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSet, ok)
		})
	}
}

func TestRaiseTo(t *testing.T) {
	prev := LevelVar.Level()
	defer LevelVar.Set(prev)

	t.Run("lowers level when env unset", func(t *testing.T) {
		t.Setenv(LevelEnvVar, "")
		LevelVar.Set(slog.LevelWarn)
		RaiseTo(slog.LevelInfo)
		assert.Equal(t, slog.LevelInfo, LevelVar.Level())
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(LevelEnvVar, "ERROR")
		LevelVar.Set(slog.LevelError)
		RaiseTo(slog.LevelInfo)
		assert.Equal(t, slog.LevelError, LevelVar.Level())
	})
}
