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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// fakeExporter implements sdklog.Exporter for tests.
type fakeExporter struct {
	mu        sync.Mutex
	exports   [][]sdklog.Record
	err       error
	block     bool
	shutdowns int
}

func (f *fakeExporter) Export(ctx context.Context, records []sdklog.Record) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	batch := make([]sdklog.Record, len(records))
	copy(batch, records)
	f.exports = append(f.exports, batch)
	return nil
}

func (f *fakeExporter) ForceFlush(context.Context) error { return nil }

func (f *fakeExporter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
	return nil
}

func (f *fakeExporter) exportCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.exports)
}

func otlpConfig(timeout time.Duration) ExportConfig {
	return ExportConfig{
		Mode:        ModeOTLP,
		Endpoint:    "localhost:4317",
		ServiceName: "kodiak-test",
		Level:       LevelInfo,
		Timeout:     timeout,
	}
}

func testOTLPSink(exp sdklog.Exporter, timeout time.Duration, batchSize int) *OTLPSink {
	s := newOTLPSink(exp, otlpConfig(timeout))
	s.batchSize = batchSize
	s.warnf = func(string, ...any) {}
	return s
}

func TestOTLPSink_BatchThresholdTriggersExport(t *testing.T) {
	exp := &fakeExporter{}
	sink := testOTLPSink(exp, time.Second, 3)

	for i := 0; i < 2; i++ {
		out := sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
		assert.Equal(t, StatusDelivered, out.Status)
	}
	assert.Equal(t, 0, exp.exportCount(), "no export below threshold")

	out := sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	assert.Equal(t, StatusDelivered, out.Status)
	require.Equal(t, 1, exp.exportCount())
	assert.Len(t, exp.exports[0], 3)
}

func TestOTLPSink_BelowLevelSkippedWithoutBuffering(t *testing.T) {
	exp := &fakeExporter{}
	sink := testOTLPSink(exp, time.Second, 1)

	out := sink.Deliver(newRecord("app", LevelDebug, "noise", nil, nil, "", ""))
	assert.Equal(t, StatusSkipped, out.Status)
	assert.Equal(t, 0, exp.exportCount())
}

func TestOTLPSink_TimeoutBoundsDeliver(t *testing.T) {
	exp := &fakeExporter{block: true}
	sink := testOTLPSink(exp, 50*time.Millisecond, 1)

	start := time.Now()
	out := sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	elapsed := time.Since(start)

	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Less(t, elapsed, time.Second, "deliver must not hang past the timeout")
}

func TestOTLPSink_RetryBudgetThenDrop(t *testing.T) {
	exportErr := errors.New("collector unreachable")
	exp := &fakeExporter{err: exportErr}
	sink := testOTLPSink(exp, time.Second, 1)
	sink.retryBudget = 2
	sink.retriesLeft = 2

	var warnings []string
	sink.warnf = func(format string, _ ...any) { warnings = append(warnings, format) }

	// First attempt fails; the batch is retained for the next trigger.
	out := sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, exportErr)
	assert.Empty(t, warnings)

	// Second attempt exhausts the budget; the batch is dropped.
	out = sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	assert.Equal(t, StatusFailed, out.Status)
	require.Len(t, warnings, 1)

	// Budget reset: recovery is possible afterwards.
	exp.mu.Lock()
	exp.err = nil
	exp.mu.Unlock()
	out = sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	assert.Equal(t, StatusDelivered, out.Status)
	assert.Equal(t, 1, exp.exportCount())
	assert.Len(t, exp.exports[0], 1, "dropped records do not reappear")
}

func TestOTLPSink_BufferBounded(t *testing.T) {
	exp := &fakeExporter{err: errors.New("down")}
	sink := testOTLPSink(exp, time.Second, 2)
	sink.retryBudget = 1 << 30 // never exhaust in this test
	sink.retriesLeft = sink.retryBudget

	var dropWarned bool
	sink.warnf = func(format string, _ ...any) {
		if format == "otlp sink buffer full, dropped %d oldest record(s)" {
			dropWarned = true
		}
	}

	for i := 0; i < sink.batchSize*maxBufferedFactor+5; i++ {
		sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	}

	sink.mu.Lock()
	buffered := len(sink.batch)
	sink.mu.Unlock()
	assert.LessOrEqual(t, buffered, sink.batchSize*maxBufferedFactor)
	assert.True(t, dropWarned)
}

func TestOTLPSink_FlushExportsPending(t *testing.T) {
	exp := &fakeExporter{}
	sink := testOTLPSink(exp, time.Second, 100)

	sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	require.NoError(t, sink.Flush(context.Background()))
	require.Equal(t, 1, exp.exportCount())
	assert.Len(t, exp.exports[0], 1)
}

func TestOTLPSink_CloseIdempotent(t *testing.T) {
	exp := &fakeExporter{}
	sink := testOTLPSink(exp, time.Second, 100)

	sink.Deliver(newRecord("app", LevelInfo, "event", nil, nil, "", ""))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	assert.Equal(t, 1, exp.exportCount(), "final flush happens exactly once")
	assert.Equal(t, 1, exp.shutdowns)

	out := sink.Deliver(newRecord("app", LevelInfo, "late", nil, nil, "", ""))
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrSinkClosed)
}

func TestOTLPSink_ConvertCarriesIdentity(t *testing.T) {
	exp := &fakeExporter{}
	sink := testOTLPSink(exp, time.Second, 1)

	rec := newRecord("jobs", LevelError, "job failed", nil,
		Fields{"attempt": 2, "ratio": 0.5, "fatal": false, "host": "node-1"}, "abc123", "def456")
	out := sink.Deliver(rec)
	require.Equal(t, StatusDelivered, out.Status)
	require.Equal(t, 1, exp.exportCount())

	exported := exp.exports[0][0]
	assert.Equal(t, "job failed", exported.Body().AsString())
	assert.Equal(t, "ERROR", exported.SeverityText())

	attrs := map[string]otellog.Value{}
	exported.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	// String attribute values must survive the SDK record intact, not
	// arrive as empty-valued keys.
	assert.Equal(t, "kodiak-test", attrs["service.name"].AsString())
	assert.Equal(t, "jobs", attrs["component"].AsString())
	assert.Equal(t, "abc123", attrs["trace_id"].AsString())
	assert.Equal(t, "def456", attrs["span_id"].AsString())
	assert.Equal(t, "node-1", attrs["host"].AsString())
	assert.Equal(t, int64(2), attrs["attempt"].AsInt64())
}
