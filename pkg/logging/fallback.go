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
	"io"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// The fallback channel reports pipeline-internal failures (sink I/O
// errors, dropped batches) on stderr instead of re-entering the
// pipeline, which would recurse on the very failure being reported.
// Output is rate-limited so a dead sink cannot flood the terminal.

var fallback = newFallbackWarner(os.Stderr)

type fallbackWarner struct {
	mu  sync.Mutex
	w   io.Writer
	lim *rate.Limiter
}

func newFallbackWarner(w io.Writer) *fallbackWarner {
	// One line per second with a small burst covers startup races
	// without letting sustained failures scroll the terminal.
	return &fallbackWarner{w: w, lim: rate.NewLimiter(rate.Limit(1), 5)}
}

func (f *fallbackWarner) warnf(format string, args ...any) {
	if !f.lim.Allow() {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.w, "kodiak/logging: "+format+"\n", args...)
}

// fallbackWarnf writes to the process-wide fallback channel.
func fallbackWarnf(format string, args ...any) {
	fallback.warnf(format, args...)
}
