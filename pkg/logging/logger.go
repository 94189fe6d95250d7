// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides the Kodiak observability pipeline.
//
// The pipeline is a structured-logging core that fans log records out to
// zero, one, or two destinations (a local file, a remote OpenTelemetry
// collector) under a single configuration surface, with bounded export
// latency and graceful degradation when a sink is unavailable.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Pipeline                          │
//	│   Handle ──▶ Multiplexer ──▶ FileSink   (append, local)  │
//	│                         └──▶ OTLPSink   (batch, remote)  │
//	└──────────────────────────────────────────────────────────┘
//
// Application code obtains a Handle bound to a component name, emits a
// record, and the multiplexer dispatches it to the sinks enabled by the
// configured mode. Each sink formats and delivers independently; one
// sink's failure never blocks or loses delivery to another.
//
// # Basic Usage
//
//	pipeline, err := logging.New(cfg)
//	if err != nil {
//	    return err // configuration error, refuse to start
//	}
//	defer pipeline.Close()
//
//	log := pipeline.Logger("restapi")
//	log.Info("server started", logging.Fields{"port": 8000})
//
// # Error Handling
//
// Application logic never observes a logging failure: delivery errors
// are recovered inside the sinks and surfaced only as rate-limited
// warnings on stderr. At worst log data is lost while the application
// continues running. The single exception is construction: an invalid
// ExportConfig (file mode without a path, non-positive timeout) is
// fatal and must prevent startup.
//
// # Thread Safety
//
// Handles are immutable after Bind and safe for concurrent emit from
// multiple goroutines; concurrent emits only contend at the sink layer.
package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Handle is a named, immutable logging view bound to a component.
//
// Description:
//
//	A Handle carries a component name and a set of persistent fields
//	established via Bind. Handles are created at component construction
//	and held for the component's lifetime; "binding" always produces a
//	new handle value, never mutates one in place.
//
// Thread Safety: Immutable; safe for concurrent use.
type Handle struct {
	pipeline  *Pipeline
	component string
	fields    Fields
	traceID   string
	spanID    string
}

// Bind returns a derived handle with extra persistent fields.
//
// The parent's fields are copied and overlaid with extra; the parent is
// not modified. Bind sends nothing.
func (h *Handle) Bind(extra Fields) *Handle {
	child := *h
	merged := h.fields.clone()
	if merged == nil {
		merged = make(Fields, len(extra))
	}
	for k, v := range extra {
		merged[k] = v
	}
	child.fields = merged
	return &child
}

// WithTrace returns a derived handle carrying the trace and span
// identifiers of the active span in ctx, if any.
//
// This attaches correlation identifiers to emitted records; it does not
// propagate trace context anywhere.
func (h *Handle) WithTrace(ctx context.Context) *Handle {
	if ctx == nil {
		return h
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h
	}
	child := *h
	child.traceID = spanCtx.TraceID().String()
	child.spanID = spanCtx.SpanID().String()
	return &child
}

// Emit constructs a record and forwards it to the multiplexer.
//
// Levels below the configured minimum are dropped before the record is
// constructed, so suppressed levels cost no allocation. Call-site
// fields win over handle-bound fields on collision, except for the
// reserved keys (timestamp, level, message), which are protected.
func (h *Handle) Emit(level Level, msg string, fields Fields) {
	if h == nil || h.pipeline == nil || level < h.pipeline.cfg.Level {
		return
	}
	rec := newRecord(h.component, level, msg, h.fields, fields, h.traceID, h.spanID)
	h.pipeline.mux.Dispatch(rec)
}

// Debug emits a record at LevelDebug.
func (h *Handle) Debug(msg string, fields Fields) { h.Emit(LevelDebug, msg, fields) }

// Info emits a record at LevelInfo.
func (h *Handle) Info(msg string, fields Fields) { h.Emit(LevelInfo, msg, fields) }

// Warning emits a record at LevelWarning.
func (h *Handle) Warning(msg string, fields Fields) { h.Emit(LevelWarning, msg, fields) }

// Error emits a record at LevelError.
func (h *Handle) Error(msg string, fields Fields) { h.Emit(LevelError, msg, fields) }

// Critical emits a record at LevelCritical.
func (h *Handle) Critical(msg string, fields Fields) { h.Emit(LevelCritical, msg, fields) }

// Component returns the component name the handle is bound to.
func (h *Handle) Component() string { return h.component }
