// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileModeConfig(t *testing.T) ExportConfig {
	t.Helper()
	return ExportConfig{
		Mode:        ModeFile,
		FilePath:    filepath.Join(t.TempDir(), "kodiak.log"),
		ServiceName: "kodiak-test",
		Level:       LevelInfo,
		Format:      FormatJSON,
		Timeout:     time.Second,
	}
}

func TestNew_InvalidConfigIsFatal(t *testing.T) {
	tests := []struct {
		name string
		cfg  ExportConfig
		want error
	}{
		{
			name: "file mode without path",
			cfg:  ExportConfig{Mode: ModeFile, Level: LevelInfo, Timeout: time.Second},
			want: ErrMissingFilePath,
		},
		{
			name: "otlp mode without endpoint",
			cfg:  ExportConfig{Mode: ModeOTLP, Level: LevelInfo, Timeout: time.Second},
			want: ErrMissingEndpoint,
		},
		{
			name: "non-positive timeout",
			cfg:  ExportConfig{Mode: ModeFile, FilePath: "x.log", Level: LevelInfo, Timeout: 0},
			want: ErrInvalidTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestPipeline_EndToEndFileMode(t *testing.T) {
	cfg := fileModeConfig(t)
	p, err := New(cfg)
	require.NoError(t, err)

	log := p.Logger("app")
	log.Info("application started", Fields{"version": "1.0.0"})
	log.Debug("suppressed", nil)
	require.NoError(t, p.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "application started", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "1.0.0", entry["version"])
}

func TestPipeline_CloseIdempotent(t *testing.T) {
	p, err := New(fileModeConfig(t))
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestPipeline_EmitAfterCloseIsSafe(t *testing.T) {
	p, err := New(fileModeConfig(t))
	require.NoError(t, err)
	log := p.Logger("app")
	require.NoError(t, p.Close())

	assert.NotPanics(t, func() { log.Info("after close", nil) })
}

func TestPipeline_FlushDrainsSinks(t *testing.T) {
	cfg := fileModeConfig(t)
	p, err := New(cfg)
	require.NoError(t, err)
	defer p.Close()

	p.Logger("app").Info("flushed", nil)
	require.NoError(t, p.Flush(context.Background()))

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"flushed"`)
}

func TestPipeline_ConfigSnapshot(t *testing.T) {
	cfg := fileModeConfig(t)
	p, err := New(cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, cfg, p.Config())
}

func TestGlobal_InitIdempotentAndShutdown(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })
	require.NoError(t, Shutdown()) // reset any leftover global state

	inert := GetLogger("early")
	assert.NotPanics(t, func() { inert.Info("before init", nil) })

	cfg := fileModeConfig(t)
	first, err := Init(cfg)
	require.NoError(t, err)

	second, err := Init(ExportConfig{Mode: ModeFile}) // ignored: already initialized
	require.NoError(t, err)
	assert.Same(t, first, second)

	log := GetLogger("app")
	log.Info("global emit", nil)
	require.NoError(t, Shutdown())
	require.NoError(t, Shutdown())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"global emit"`)
}
