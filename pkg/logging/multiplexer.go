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
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Multiplexer fans one record out to every enabled sink.
//
// Description:
//
//	The multiplexer is constructed once from an ExportConfig snapshot
//	and owns its sinks for the process lifetime: it is the sole
//	authority for their construction and teardown, and reconfiguring
//	the mode at runtime is not supported. Dispatch waits for all sink
//	attempts (synchronous fan-out) so the aggregated outcomes are
//	complete when it returns; one sink's failure neither prevents nor
//	delays another's attempt.
//
// Thread Safety: Safe for concurrent Dispatch calls.
type Multiplexer struct {
	sinks []Sink
	warnf func(format string, args ...any)

	mu     sync.Mutex
	closed bool
}

// newMultiplexer constructs the sinks selected by cfg.Mode.
//
// cfg must already have passed Validate. A sink construction failure
// tears down any sink built before it.
func newMultiplexer(cfg ExportConfig) (*Multiplexer, error) {
	m := &Multiplexer{warnf: fallbackWarnf}

	if cfg.Mode.includesFile() {
		fs, err := NewFileSink(cfg)
		if err != nil {
			return nil, err
		}
		m.sinks = append(m.sinks, fs)
	}
	if cfg.Mode.includesOTLP() {
		os, err := NewOTLPSink(cfg)
		if err != nil {
			for _, s := range m.sinks {
				_ = s.Close()
			}
			return nil, err
		}
		m.sinks = append(m.sinks, os)
	}
	return m, nil
}

// Dispatch delivers one record to every sink and aggregates the
// per-sink outcomes.
//
// Failed outcomes are surfaced on the stderr fallback channel; they are
// never returned to the emitting call site. Dispatch order across sinks
// is unspecified.
func (m *Multiplexer) Dispatch(r Record) []Outcome {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return []Outcome{{Status: StatusFailed, Err: ErrPipelineClosed}}
	}
	sinks := m.sinks
	m.mu.Unlock()

	outcomes := make([]Outcome, len(sinks))
	var g errgroup.Group
	for i, s := range sinks {
		g.Go(func() error {
			outcomes[i] = s.Deliver(r)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.Status == StatusFailed {
			m.warnf("sink %s failed to deliver record %q: %v", o.Sink, r.Message, o.Err)
		}
	}
	return outcomes
}

// Flush drains every sink, collecting errors.
func (m *Multiplexer) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	sinks := m.sinks
	m.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close tears down every sink. Idempotent: the second and later calls
// return nil without flushing again.
func (m *Multiplexer) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sinks := m.sinks
	m.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
