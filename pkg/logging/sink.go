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

import "context"

// -----------------------------------------------------------------------------
// Delivery outcomes
// -----------------------------------------------------------------------------

// Status classifies the result of a single sink delivery attempt.
type Status int

const (
	// StatusDelivered means the sink accepted the record. For a
	// batching sink this includes records buffered for a later export.
	StatusDelivered Status = iota

	// StatusSkipped means the record was below the sink's minimum level
	// or the sink is disabled; no I/O was attempted.
	StatusSkipped

	// StatusFailed means the delivery attempt failed. The failure is
	// never propagated to the emitting call site.
	StatusFailed
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-sink result of one delivery attempt.
type Outcome struct {
	// Sink names the sink that produced this outcome.
	Sink string

	// Status classifies the attempt.
	Status Status

	// Err carries the failure reason when Status is StatusFailed.
	Err error
}

func delivered(sink string) Outcome { return Outcome{Sink: sink, Status: StatusDelivered} }
func skipped(sink string) Outcome   { return Outcome{Sink: sink, Status: StatusSkipped} }
func failed(sink string, err error) Outcome {
	return Outcome{Sink: sink, Status: StatusFailed, Err: err}
}

// -----------------------------------------------------------------------------
// Interface
// -----------------------------------------------------------------------------

// Sink is a delivery target for log records.
//
// Description:
//
//	Sink is the uniform contract over the file and OTLP destinations.
//	A sink accepts a record, attempts delivery, and reports the result
//	as an Outcome; it never panics and never returns an error to the
//	deliverer. A record below the sink's minimum level must be reported
//	as skipped without attempting I/O.
//
// Thread Safety: All implementations must be safe for concurrent use.
type Sink interface {
	// Name identifies the sink in outcomes and fallback warnings.
	Name() string

	// Deliver attempts delivery of a single record.
	Deliver(r Record) Outcome

	// Flush drains buffered records, bounded by the sink's configured
	// timeout. Best effort: an error means data may have been dropped.
	Flush(ctx context.Context) error

	// Close flushes and releases resources. Idempotent; safe to call
	// multiple times.
	Close() error
}
