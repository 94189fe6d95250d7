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
	"runtime"
	"time"
)

// TimedOption configures performance instrumentation.
type TimedOption func(*timedOptions)

type timedOptions struct {
	collectMemory bool
}

// WithMemory also records the heap allocation delta across the wrapped
// work. Reading memory statistics is not free; leave this off outside
// of profiling sessions.
func WithMemory() TimedOption {
	return func(o *timedOptions) { o.collectMemory = true }
}

// Timed wraps a unit of work with performance instrumentation.
//
// Description:
//
//	Records the start time, invokes fn, and emits one performance
//	record carrying the elapsed duration whether fn returns normally,
//	returns an error, or panics. The wrapped work's result is
//	propagated unchanged: errors are returned as-is and panics are
//	re-raised after the failure record is emitted.
//
// Inputs:
//   - h: Handle the performance record is emitted through.
//   - operation: Name of the unit of work.
//   - fn: The work to measure.
//
// Outputs:
//   - error: Exactly what fn returned.
func Timed(h *Handle, operation string, fn func() error, opts ...TimedOption) error {
	var o timedOptions
	for _, opt := range opts {
		opt(&o)
	}

	var before runtime.MemStats
	if o.collectMemory {
		runtime.ReadMemStats(&before)
	}

	start := time.Now()
	var err error
	defer func() {
		fields := perfFields(operation, start, o, before)
		if rec := recover(); rec != nil {
			fields["outcome"] = "failure"
			fields["panic"] = fmt.Sprint(rec)
			h.Error("operation failed", fields)
			panic(rec)
		}
		if err != nil {
			fields["outcome"] = "failure"
			fields["error"] = err.Error()
			h.Error("operation failed", fields)
			return
		}
		fields["outcome"] = "success"
		h.Info("operation completed", fields)
	}()

	err = fn()
	return err
}

// TimedValue is Timed for work that returns a value alongside an error.
func TimedValue[T any](h *Handle, operation string, fn func() (T, error), opts ...TimedOption) (T, error) {
	var out T
	err := Timed(h, operation, func() error {
		var fnErr error
		out, fnErr = fn()
		return fnErr
	}, opts...)
	return out, err
}

func perfFields(operation string, start time.Time, o timedOptions, before runtime.MemStats) Fields {
	fields := Fields{
		"event":       "performance",
		"operation":   operation,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if o.collectMemory {
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		fields["heap_alloc_kb"] = float64(after.HeapAlloc) / 1024.0
		fields["heap_delta_kb"] = (float64(after.HeapAlloc) - float64(before.HeapAlloc)) / 1024.0
	}
	return fields
}
