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
	"fmt"
	"strings"
	"time"
)

// Mode selects which sinks the multiplexer constructs.
type Mode string

const (
	// ModeFile exports records to the local file sink only.
	ModeFile Mode = "file"

	// ModeOTLP exports records to the remote collector only.
	ModeOTLP Mode = "otlp"

	// ModeBoth exports records to both sinks independently.
	ModeBoth Mode = "both"
)

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFile:
		return ModeFile, nil
	case ModeOTLP:
		return ModeOTLP, nil
	case ModeBoth:
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// includesFile reports whether the file sink is enabled.
func (m Mode) includesFile() bool { return m == ModeFile || m == ModeBoth }

// includesOTLP reports whether the OTLP sink is enabled.
func (m Mode) includesOTLP() bool { return m == ModeOTLP || m == ModeBoth }

// ExportConfig is the immutable configuration snapshot the pipeline is
// built from.
//
// Re-reading configuration requires constructing a new pipeline; there
// is no hot-reload.
type ExportConfig struct {
	// Mode selects the active sinks: file, otlp, or both.
	Mode Mode

	// FilePath is the file sink target. Required when Mode includes file.
	FilePath string

	// Endpoint is the OTLP collector address. Required when Mode
	// includes otlp. A http:// or https:// scheme prefix is tolerated
	// and stripped for the gRPC dial.
	Endpoint string

	// ServiceName tags exported records with a service identity.
	ServiceName string

	// Timeout bounds each export attempt. Must be positive.
	Timeout time.Duration

	// Level is the minimum severity emitted.
	Level Level

	// Format selects record formatting for the file sink.
	Format Format
}

// Validate checks the snapshot for configuration errors.
//
// All returned errors wrap ErrInvalidConfig.
func (c ExportConfig) Validate() error {
	switch c.Mode {
	case ModeFile, ModeOTLP, ModeBoth:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownMode, string(c.Mode))
	}
	if c.Mode.includesFile() && strings.TrimSpace(c.FilePath) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingFilePath)
	}
	if c.Mode.includesOTLP() && strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingEndpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidConfig, ErrInvalidTimeout, c.Timeout)
	}
	switch c.Format {
	case FormatJSON, FormatConsole, FormatPlain:
	case "":
		// Zero value falls back to JSON in the file sink.
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownFormat, string(c.Format))
	}
	return nil
}

// dialTarget returns the endpoint without a URL scheme, suitable for
// grpc.NewClient.
func (c ExportConfig) dialTarget() string {
	ep := strings.TrimSpace(c.Endpoint)
	ep = strings.TrimPrefix(ep, "https://")
	ep = strings.TrimPrefix(ep, "http://")
	return strings.TrimSuffix(ep, "/")
}
