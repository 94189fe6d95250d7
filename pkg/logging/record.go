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
	"sort"
	"strings"
	"time"
)

// =============================================================================
// Levels
// =============================================================================

// Level represents log severity.
//
// Levels are ordered: Debug < Info < Warning < Error < Critical.
// Setting a minimum level on the pipeline suppresses everything below it
// before a record is even constructed.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarning is for recoverable, unexpected situations.
	LevelWarning

	// LevelError is for failed operations where the process continues.
	LevelError

	// LevelCritical is for failures that threaten the whole process.
	LevelCritical
)

// String returns the canonical upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level.
//
// Matching is case-insensitive. "WARN" is accepted as an alias for
// WARNING. Unknown names return ErrUnknownLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// =============================================================================
// Fields
// =============================================================================

// Fields is the key/value bag attached to a record at bind or emit time.
//
// Values should be JSON-representable scalars or structures; anything
// else is stringified by the formatters.
type Fields map[string]any

// reserved keys carry the record's canonical values and may not be
// overridden by caller-supplied fields.
var reservedKeys = map[string]struct{}{
	"timestamp": {},
	"level":     {},
	"message":   {},
}

// conflictKey is the warning field recorded when a caller field collides
// with a reserved key.
const conflictKey = "reserved_key_conflict"

// clone returns a shallow copy of the field bag.
func (f Fields) clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// =============================================================================
// Record
// =============================================================================

// Record is the canonical structured log record.
//
// A Record is an immutable value once constructed: the pipeline never
// mutates it after newRecord returns, so it is safe to hand the same
// Record to multiple sinks concurrently.
type Record struct {
	// Time is the wall-clock emit time in UTC.
	Time time.Time

	// Level is the record severity.
	Level Level

	// Message is a short event name, not a formatted sentence.
	Message string

	// Component is the originating logical unit.
	Component string

	// TraceID and SpanID are opaque correlation identifiers, empty when
	// no trace context was bound.
	TraceID string
	SpanID  string

	// Fields holds merged handle-bound and call-site fields. Reserved
	// keys (timestamp, level, message) never appear here.
	Fields Fields
}

// newRecord merges bound and call-site fields into a Record.
//
// Call-site fields win on collision, except for reserved keys: those are
// dropped and the dropped key names are recorded under
// reserved_key_conflict instead of clobbering the canonical values.
func newRecord(component string, level Level, msg string, bound, callsite Fields, traceID, spanID string) Record {
	merged := make(Fields, len(bound)+len(callsite))
	var conflicts []string

	addAll := func(src Fields) {
		for k, v := range src {
			if _, isReserved := reservedKeys[k]; isReserved {
				conflicts = append(conflicts, k)
				continue
			}
			merged[k] = v
		}
	}
	addAll(bound)
	addAll(callsite)

	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		merged[conflictKey] = strings.Join(conflicts, ",")
	}

	return Record{
		Time:      time.Now().UTC(),
		Level:     level,
		Message:   msg,
		Component: component,
		TraceID:   traceID,
		SpanID:    spanID,
		Fields:    merged,
	}
}
