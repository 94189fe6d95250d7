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
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Format selects how a record is rendered on a sink.
//
// Formatting is a pure function of the record, independent of sink
// identity, so both sinks could in principle share a formatter.
type Format string

const (
	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"

	// FormatConsole renders a colorized human-readable line.
	FormatConsole Format = "console"

	// FormatPlain renders key=value pairs.
	FormatPlain Format = "plain"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatConsole:
		return FormatConsole, nil
	case FormatPlain:
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// timestampLayout is RFC3339 with sub-second precision, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// EncodeRecord renders a record as a single newline-terminated line.
//
// colorize only affects FormatConsole; the file sink always encodes
// without color. The returned slice always ends in '\n' so a sink can
// hand it to a single Write call and never leave a partial line behind.
func EncodeRecord(r Record, f Format, colorize bool) []byte {
	switch f {
	case FormatConsole:
		return encodeConsole(r, colorize)
	case FormatPlain:
		return encodePlain(r)
	default:
		return encodeJSON(r)
	}
}

func encodeJSON(r Record) []byte {
	obj := make(map[string]any, len(r.Fields)+6)
	obj["timestamp"] = r.Time.Format(timestampLayout)
	obj["level"] = r.Level.String()
	obj["message"] = r.Message
	if r.Component != "" {
		obj["component"] = r.Component
	}
	if r.TraceID != "" {
		obj["trace_id"] = r.TraceID
	}
	if r.SpanID != "" {
		obj["span_id"] = r.SpanID
	}
	for k, v := range r.Fields {
		obj[k] = v
	}

	line, err := json.Marshal(obj)
	if err != nil {
		// A field value defeated the JSON encoder. Re-encode with the
		// offending values stringified rather than losing the record.
		for k, v := range r.Fields {
			obj[k] = fmt.Sprint(v)
		}
		line, _ = json.Marshal(obj)
	}
	return append(line, '\n')
}

func encodePlain(r Record) []byte {
	var b strings.Builder
	b.WriteString("timestamp=")
	b.WriteString(r.Time.Format(timestampLayout))
	b.WriteString(" level=")
	b.WriteString(r.Level.String())
	b.WriteString(" message=")
	b.WriteString(quoteIfNeeded(r.Message))
	if r.Component != "" {
		b.WriteString(" component=")
		b.WriteString(quoteIfNeeded(r.Component))
	}
	if r.TraceID != "" {
		b.WriteString(" trace_id=")
		b.WriteString(r.TraceID)
	}
	if r.SpanID != "" {
		b.WriteString(" span_id=")
		b.WriteString(r.SpanID)
	}
	for _, k := range sortedKeys(r.Fields) {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(quoteIfNeeded(fmt.Sprint(r.Fields[k])))
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// Console palette, matching the Kodiak CLI styling.
var (
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	styleDebug    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
	styleInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("#20B9B4"))
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	styleCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	styleField    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
)

func levelStyle(l Level) lipgloss.Style {
	switch l {
	case LevelDebug:
		return styleDebug
	case LevelWarning:
		return styleWarning
	case LevelError:
		return styleError
	case LevelCritical:
		return styleCritical
	default:
		return styleInfo
	}
}

func encodeConsole(r Record, colorize bool) []byte {
	ts := r.Time.Format("15:04:05.000")
	level := fmt.Sprintf("%-8s", r.Level.String())

	var fields strings.Builder
	if r.Component != "" {
		fmt.Fprintf(&fields, " component=%s", r.Component)
	}
	if r.TraceID != "" {
		fmt.Fprintf(&fields, " trace_id=%s", r.TraceID)
	}
	for _, k := range sortedKeys(r.Fields) {
		fmt.Fprintf(&fields, " %s=%s", k, quoteIfNeeded(fmt.Sprint(r.Fields[k])))
	}

	if !colorize {
		return []byte(fmt.Sprintf("%s %s %s%s\n", ts, level, r.Message, fields.String()))
	}
	return []byte(fmt.Sprintf("%s %s %s%s\n",
		styleTime.Render(ts),
		levelStyle(r.Level).Render(level),
		r.Message,
		styleField.Render(fields.String()),
	))
}

func sortedKeys(f Fields) []string {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
