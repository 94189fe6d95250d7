// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package settings holds the application configuration snapshot.
//
// Settings come from three layers, lowest precedence first: compiled
// defaults, the user's yaml file (~/.kodiak/kodiak.yaml), and
// environment variables. The snapshot is read once at startup; changing
// it requires a restart.
package settings

import (
	"time"

	"github.com/AleutianAI/Kodiak/pkg/logging"
)

// InterfaceType selects the front-end the bare binary runs.
type InterfaceType string

const (
	InterfaceCLI     InterfaceType = "cli"
	InterfaceRESTAPI InterfaceType = "restapi"
)

type Settings struct {
	// Interface: which front-end a bare invocation starts
	Interface InterfaceSettings `yaml:"interface"`

	// Logging: the export pipeline configuration surface
	Logging LoggingSettings `yaml:"logging"`

	// Profiler: performance instrumentation toggles
	Profiler ProfilerSettings `yaml:"profiler"`
}

type InterfaceSettings struct {
	Type InterfaceType `yaml:"type" validate:"oneof=cli restapi"` // e.g. cli
}

type LoggingSettings struct {
	Level    string `yaml:"level" validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"` // e.g. INFO
	Format   string `yaml:"format" validate:"oneof=json console plain"`               // e.g. json
	FilePath string `yaml:"file_path"`                                                // e.g. logs/kodiak.log

	// ExportMode decides where records go: file, otlp, or both.
	ExportMode string `yaml:"export_mode" validate:"oneof=file otlp both"`

	// Endpoint is the OTLP collector address; only read when
	// ExportMode includes otlp.
	Endpoint    string `yaml:"otel_endpoint"`
	ServiceName string `yaml:"otel_service_name"`

	// ExportTimeoutMillis bounds each export attempt.
	ExportTimeoutMillis int `yaml:"otel_export_timeout_ms" validate:"gt=0"`
}

type ProfilerSettings struct {
	Active        bool `yaml:"active"`
	CollectMemory bool `yaml:"collect_memory"`
}

// DefaultSettings returns the compiled-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Interface: InterfaceSettings{
			Type: InterfaceCLI,
		},
		Logging: LoggingSettings{
			Level:               "INFO",
			Format:              "json",
			FilePath:            "logs/kodiak.log",
			ExportMode:          "file",
			Endpoint:            "http://localhost:4317",
			ServiceName:         "kodiak",
			ExportTimeoutMillis: 30000,
		},
		Profiler: ProfilerSettings{
			Active:        false,
			CollectMemory: false,
		},
	}
}

// ToExportConfig bridges the logging settings into the pipeline's
// configuration snapshot.
func (s Settings) ToExportConfig() (logging.ExportConfig, error) {
	level, err := logging.ParseLevel(s.Logging.Level)
	if err != nil {
		return logging.ExportConfig{}, err
	}
	format, err := logging.ParseFormat(s.Logging.Format)
	if err != nil {
		return logging.ExportConfig{}, err
	}
	mode, err := logging.ParseMode(s.Logging.ExportMode)
	if err != nil {
		return logging.ExportConfig{}, err
	}

	return logging.ExportConfig{
		Mode:        mode,
		FilePath:    s.Logging.FilePath,
		Endpoint:    s.Logging.Endpoint,
		ServiceName: s.Logging.ServiceName,
		Timeout:     time.Duration(s.Logging.ExportTimeoutMillis) * time.Millisecond,
		Level:       level,
		Format:      format,
	}, nil
}
