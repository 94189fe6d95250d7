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
	"sync"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// defaultBatchSize is the number of buffered records that triggers
	// an export attempt.
	defaultBatchSize = 128

	// defaultRetryBudget is the number of export attempts a batch gets
	// before it is dropped. Fixed-count rather than exponential: the
	// batch only retries on the next triggering event, so the interval
	// already grows with traffic gaps.
	defaultRetryBudget = 3

	// maxBufferedFactor bounds the buffer at this multiple of the batch
	// size during sustained collector outages; older records beyond the
	// bound are dropped with a fallback warning.
	maxBufferedFactor = 4
)

// OTLPSink batches records and forwards them to a remote collector.
//
// Description:
//
//	Deliver converts a record to the OTLP log data model and appends it
//	to a bounded batch buffer. An export attempt is triggered when the
//	batch reaches the size threshold and on Flush/Close. Each attempt
//	is bounded by the configured timeout; a failed batch is retried on
//	the next triggering event until its retry budget is exhausted, then
//	dropped with a fallback warning. Emitting goroutines are therefore
//	only ever delayed at batch boundaries, and never for longer than
//	the timeout.
//
// Thread Safety: Safe for concurrent Deliver calls.
type OTLPSink struct {
	exporter    sdklog.Exporter
	logger      otellog.Logger
	min         Level
	timeout     time.Duration
	service     string
	batchSize   int
	retryBudget int
	warnf       func(format string, args ...any)

	mu          sync.Mutex
	batch       []sdklog.Record
	retriesLeft int
	closed      bool
}

// recordBuffer is the sole processor of the sink's logger provider. The
// provider builds each SDK record with its configured attribute limits;
// the processor hands the finished record to the sink's batch buffer.
// A hand-constructed zero-value sdklog.Record has an attribute value
// length limit of 0 and truncates every string attribute, so records
// must come through here.
type recordBuffer struct {
	sink *OTLPSink
}

func (p recordBuffer) OnEmit(_ context.Context, rec *sdklog.Record) error {
	p.sink.buffer(rec.Clone())
	return nil
}

func (recordBuffer) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (recordBuffer) Shutdown(context.Context) error   { return nil }
func (recordBuffer) ForceFlush(context.Context) error { return nil }

// NewOTLPSink dials the collector and returns a ready sink.
//
// The gRPC connection is created lazily by grpc.NewClient, so
// construction succeeds even when the collector is down; failures
// surface per export attempt.
func NewOTLPSink(cfg ExportConfig) (*OTLPSink, error) {
	conn, err := grpc.NewClient(cfg.dialTarget(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial collector %q: %w", ErrInvalidConfig, cfg.Endpoint, err)
	}

	exporter, err := otlploggrpc.New(context.Background(), otlploggrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("%w: create otlp exporter: %w", ErrInvalidConfig, err)
	}

	return newOTLPSink(exporter, cfg), nil
}

// newOTLPSink wires an exporter directly; tests inject fakes here.
func newOTLPSink(exporter sdklog.Exporter, cfg ExportConfig) *OTLPSink {
	s := &OTLPSink{
		exporter:    exporter,
		min:         cfg.Level,
		timeout:     cfg.Timeout,
		service:     cfg.ServiceName,
		batchSize:   defaultBatchSize,
		retryBudget: defaultRetryBudget,
		retriesLeft: defaultRetryBudget,
		warnf:       fallbackWarnf,
	}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(recordBuffer{sink: s}))
	s.logger = provider.Logger("github.com/AleutianAI/Kodiak/pkg/logging")
	return s
}

// Name implements Sink.
func (s *OTLPSink) Name() string { return "otlp" }

// Deliver buffers one record, exporting when the batch is full.
func (s *OTLPSink) Deliver(r Record) Outcome {
	if r.Level < s.min {
		return skipped(s.Name())
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return failed(s.Name(), ErrSinkClosed)
	}
	s.mu.Unlock()

	// Emit routes through the provider, which builds the SDK record and
	// hands it to recordBuffer synchronously.
	s.logger.Emit(context.Background(), s.convert(r))

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batch) < s.batchSize {
		return delivered(s.Name())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.exportLocked(ctx); err != nil {
		return failed(s.Name(), err)
	}
	return delivered(s.Name())
}

// buffer appends one SDK-built record, dropping the oldest on overflow
// to bound memory under sustained collector outage.
func (s *OTLPSink) buffer(rec sdklog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.batch = append(s.batch, rec)
	if max := s.batchSize * maxBufferedFactor; len(s.batch) > max {
		dropped := len(s.batch) - max
		s.batch = s.batch[dropped:]
		s.warnf("otlp sink buffer full, dropped %d oldest record(s)", dropped)
	}
}

// Flush exports any pending records, bounded by the sink timeout.
func (s *OTLPSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.exportLocked(ctx)
}

// Close performs a final best-effort flush, then releases the
// connection regardless of outcome. Idempotent.
func (s *OTLPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	flushErr := s.exportLocked(ctx)
	shutdownErr := s.exporter.Shutdown(ctx)
	if flushErr != nil {
		return flushErr
	}
	return shutdownErr
}

// exportLocked attempts one export of the pending batch. Caller holds
// s.mu. On success the batch is cleared and the retry budget reset; on
// failure the batch is retained until the budget runs out.
func (s *OTLPSink) exportLocked(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}

	err := s.exporter.Export(ctx, s.batch)
	if err == nil {
		s.batch = nil
		s.retriesLeft = s.retryBudget
		return nil
	}

	s.retriesLeft--
	if s.retriesLeft <= 0 {
		s.warnf("otlp sink dropping batch of %d record(s) after %d failed attempts: %v",
			len(s.batch), s.retryBudget, err)
		s.batch = nil
		s.retriesLeft = s.retryBudget
	}
	return err
}

// convert maps a Record onto the OTLP log data model. The service
// identity and correlation identifiers travel as attributes.
func (s *OTLPSink) convert(r Record) otellog.Record {
	var rec otellog.Record
	rec.SetTimestamp(r.Time)
	rec.SetObservedTimestamp(time.Now().UTC())
	rec.SetSeverity(severity(r.Level))
	rec.SetSeverityText(r.Level.String())
	rec.SetBody(otellog.StringValue(r.Message))

	attrs := make([]otellog.KeyValue, 0, len(r.Fields)+4)
	if s.service != "" {
		attrs = append(attrs, otellog.String("service.name", s.service))
	}
	if r.Component != "" {
		attrs = append(attrs, otellog.String("component", r.Component))
	}
	if r.TraceID != "" {
		attrs = append(attrs, otellog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, otellog.String("span_id", r.SpanID))
	}
	for _, k := range sortedKeys(r.Fields) {
		attrs = append(attrs, otellog.KeyValue{Key: k, Value: attrValue(r.Fields[k])})
	}
	rec.AddAttributes(attrs...)
	return rec
}

func severity(l Level) otellog.Severity {
	switch l {
	case LevelDebug:
		return otellog.SeverityDebug
	case LevelInfo:
		return otellog.SeverityInfo
	case LevelWarning:
		return otellog.SeverityWarn
	case LevelError:
		return otellog.SeverityError
	case LevelCritical:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityInfo
	}
}

func attrValue(v any) otellog.Value {
	switch val := v.(type) {
	case string:
		return otellog.StringValue(val)
	case bool:
		return otellog.BoolValue(val)
	case int:
		return otellog.Int64Value(int64(val))
	case int32:
		return otellog.Int64Value(int64(val))
	case int64:
		return otellog.Int64Value(val)
	case float32:
		return otellog.Float64Value(float64(val))
	case float64:
		return otellog.Float64Value(val)
	case time.Duration:
		return otellog.Int64Value(val.Milliseconds())
	default:
		return otellog.StringValue(fmt.Sprint(val))
	}
}
