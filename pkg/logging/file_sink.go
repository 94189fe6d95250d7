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
	"fmt"
	"os"
	"sync"
)

// FileSink appends formatted records to a local file.
//
// Description:
//
//	The target is opened in append mode at construction; an unwritable
//	path is a configuration error surfaced immediately, not at first
//	write. Each record is formatted into a complete newline-terminated
//	line and handed to a single Write call under the sink's mutex, so a
//	partial write followed by process termination never corrupts
//	previously written lines.
//
// Thread Safety: Safe for concurrent Deliver calls.
type FileSink struct {
	format Format
	min    Level

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// NewFileSink opens the target path and returns a ready sink.
//
// Outputs:
//   - *FileSink: The open sink. Never nil on success.
//   - error: A configuration error (wrapping ErrInvalidConfig) if the
//     path cannot be opened for appending.
func NewFileSink(cfg ExportConfig) (*FileSink, error) {
	format := cfg.Format
	if format == "" {
		format = FormatJSON
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("%w: open log file %q: %w", ErrInvalidConfig, cfg.FilePath, err)
	}

	return &FileSink{
		format: format,
		min:    cfg.Level,
		file:   file,
	}, nil
}

// Name implements Sink.
func (s *FileSink) Name() string { return "file" }

// Deliver appends one formatted line to the file.
//
// I/O errors (disk full, permission revoked mid-run) yield a failed
// outcome; they are never raised to the caller.
func (s *FileSink) Deliver(r Record) Outcome {
	if r.Level < s.min {
		return skipped(s.Name())
	}

	// Format outside the lock; the line is complete before the single
	// write below.
	line := EncodeRecord(r, s.format, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return failed(s.Name(), ErrSinkClosed)
	}
	if _, err := s.file.Write(line); err != nil {
		return failed(s.Name(), err)
	}
	return delivered(s.Name())
}

// Flush syncs the file to stable storage.
func (s *FileSink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.file.Sync()
}

// Close syncs and closes the file. Idempotent.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	syncErr := s.file.Sync()
	closeErr := s.file.Close()
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
