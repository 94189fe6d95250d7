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

import "errors"

// Sentinel errors for the logging package.
//
// Configuration sentinels wrap ErrInvalidConfig so callers can match the
// whole class with errors.Is(err, ErrInvalidConfig). Configuration
// errors are fatal: they are returned from pipeline construction and
// must prevent startup. Delivery errors are never returned to emitting
// call sites; they only appear inside sink Outcomes and on the stderr
// fallback channel.
var (
	// ErrInvalidConfig is the root of all configuration errors.
	ErrInvalidConfig = errors.New("invalid logging configuration")

	// ErrUnknownLevel is returned for an unrecognized level name.
	ErrUnknownLevel = errors.New("unknown log level")

	// ErrUnknownFormat is returned for an unrecognized format name.
	ErrUnknownFormat = errors.New("unknown log format")

	// ErrUnknownMode is returned for an unrecognized export mode.
	ErrUnknownMode = errors.New("unknown export mode")

	// ErrMissingFilePath is returned when the export mode includes the
	// file sink but no file path is configured.
	ErrMissingFilePath = errors.New("file export requires a file path")

	// ErrMissingEndpoint is returned when the export mode includes the
	// OTLP sink but no collector endpoint is configured.
	ErrMissingEndpoint = errors.New("otlp export requires an endpoint")

	// ErrInvalidTimeout is returned for a non-positive export timeout.
	ErrInvalidTimeout = errors.New("export timeout must be positive")

	// ErrSinkClosed is reported when delivering to a closed sink.
	ErrSinkClosed = errors.New("sink has been closed")

	// ErrPipelineClosed is reported when dispatching through a closed
	// multiplexer.
	ErrPipelineClosed = errors.New("pipeline has been closed")
)
