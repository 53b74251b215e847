package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordHandlerExecution does nothing.
func (NoopMetrics) RecordHandlerExecution(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordTurn does nothing.
func (NoopMetrics) RecordTurn(_ context.Context, _ bool, _ time.Duration, _ int) {}

// RecordRouteFallback does nothing.
func (NoopMetrics) RecordRouteFallback(_ context.Context, _ string) {}

// RecordCompletion does nothing.
func (NoopMetrics) RecordCompletion(_ context.Context, _ string, _ time.Duration, _ error) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartTurnSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartTurnSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartHandlerSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartHandlerSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
