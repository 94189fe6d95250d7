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
	"sync"
)

// Pipeline owns the multiplexer and hands out component-bound Handles.
//
// Description:
//
//	A Pipeline is constructed once from an ExportConfig snapshot and
//	lives for the process lifetime: initialized once at startup, torn
//	down once at shutdown via Close. Tests construct fresh pipelines
//	per case with New instead of sharing the process-wide instance.
//
// Thread Safety: Safe for concurrent use.
type Pipeline struct {
	cfg ExportConfig
	mux *Multiplexer

	closeOnce sync.Once
	closeErr  error
}

// New validates cfg and constructs a pipeline.
//
// Outputs:
//   - *Pipeline: Ready pipeline. Never nil on success.
//   - error: A configuration error wrapping ErrInvalidConfig; the
//     caller must treat it as fatal and refuse to start.
func New(cfg ExportConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mux, err := newMultiplexer(cfg)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, mux: mux}, nil
}

// Logger returns a Handle bound to the given component name.
func (p *Pipeline) Logger(component string) *Handle {
	return &Handle{pipeline: p, component: component}
}

// Config returns the immutable configuration snapshot the pipeline was
// built from.
func (p *Pipeline) Config() ExportConfig { return p.cfg }

// Flush drains all sinks, bounded by each sink's configured timeout.
func (p *Pipeline) Flush(ctx context.Context) error {
	return p.mux.Flush(ctx)
}

// Close performs the final bounded flush window and releases sink
// resources. Records that cannot be delivered within that window are
// dropped; Close never blocks process exit indefinitely. Idempotent.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.mux.Close()
	})
	return p.closeErr
}

// -----------------------------------------------------------------------------
// Process-wide pipeline
// -----------------------------------------------------------------------------

var (
	globalMu sync.Mutex
	global   *Pipeline
)

// Init constructs the process-wide pipeline, once.
//
// Subsequent calls return the existing pipeline and ignore cfg;
// re-reading configuration requires a process restart. The front-ends
// (CLI, REST) call Init at startup and Close at shutdown.
func Init(cfg ExportConfig) (*Pipeline, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return global, nil
	}
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	global = p
	return global, nil
}

// GetLogger returns a Handle from the process-wide pipeline, or an
// inert handle that drops everything when Init has not been called.
func GetLogger(component string) *Handle {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return &Handle{component: component}
	}
	return global.Logger(component)
}

// Shutdown closes the process-wide pipeline, if any.
func Shutdown() error {
	globalMu.Lock()
	p := global
	global = nil
	globalMu.Unlock()
	if p == nil {
		return nil
	}
	return p.Close()
}
