package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records workflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordHandlerExecution records a handler dispatch with its duration and error status.
	RecordHandlerExecution(ctx context.Context, handler string, duration time.Duration, err error)

	// RecordTurn records a completed workflow turn.
	// degraded is true when the turn was forced to aggregate early.
	RecordTurn(ctx context.Context, degraded bool, duration time.Duration, cycles int)

	// RecordRouteFallback records a routing decision that fell back to the
	// keyword or default path instead of the classification service.
	RecordRouteFallback(ctx context.Context, reason string)

	// RecordCompletion records a completion service call, tagged with the
	// task profile that requested it.
	RecordCompletion(ctx context.Context, profile string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	handlerExecutions metric.Int64Counter
	handlerLatency    metric.Float64Histogram
	handlerErrors     metric.Int64Counter
	turns             metric.Int64Counter
	turnLatency       metric.Float64Histogram
	turnCycles        metric.Int64Histogram
	routeFallbacks    metric.Int64Counter
	completions       metric.Int64Counter
	completionLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("careergini.workflow")

	handlerExecutions, err := meter.Int64Counter("workflow.handler.executions",
		metric.WithDescription("Number of handler dispatches"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("workflow.handler.latency_ms",
		metric.WithDescription("Handler execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("workflow.handler.errors",
		metric.WithDescription("Number of contained handler failures"),
	)
	if err != nil {
		return nil, err
	}

	turns, err := meter.Int64Counter("workflow.turns",
		metric.WithDescription("Number of workflow turns"),
	)
	if err != nil {
		return nil, err
	}

	turnLatency, err := meter.Float64Histogram("workflow.turn.latency_ms",
		metric.WithDescription("Turn latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	turnCycles, err := meter.Int64Histogram("workflow.turn.cycles",
		metric.WithDescription("Routing cycles per turn"),
	)
	if err != nil {
		return nil, err
	}

	routeFallbacks, err := meter.Int64Counter("workflow.route.fallbacks",
		metric.WithDescription("Routing decisions that used the keyword or default path"),
	)
	if err != nil {
		return nil, err
	}

	completions, err := meter.Int64Counter("workflow.completion.calls",
		metric.WithDescription("Completion service calls"),
	)
	if err != nil {
		return nil, err
	}

	completionLatency, err := meter.Float64Histogram("workflow.completion.latency_ms",
		metric.WithDescription("Completion service latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		handlerExecutions: handlerExecutions,
		handlerLatency:    handlerLatency,
		handlerErrors:     handlerErrors,
		turns:             turns,
		turnLatency:       turnLatency,
		turnCycles:        turnCycles,
		routeFallbacks:    routeFallbacks,
		completions:       completions,
		completionLatency: completionLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordHandlerExecution records a handler dispatch.
func (m *otelMetrics) RecordHandlerExecution(ctx context.Context, handler string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("handler", handler),
	}

	m.handlerExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.handlerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.handlerErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTurn records a completed turn.
func (m *otelMetrics) RecordTurn(ctx context.Context, degraded bool, duration time.Duration, cycles int) {
	attrs := []attribute.KeyValue{
		attribute.Bool("degraded", degraded),
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.turnLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	m.turnCycles.Record(ctx, int64(cycles), metric.WithAttributes(attrs...))
}

// RecordRouteFallback records a fallback routing decision.
func (m *otelMetrics) RecordRouteFallback(ctx context.Context, reason string) {
	m.routeFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordCompletion records a completion service call.
func (m *otelMetrics) RecordCompletion(ctx context.Context, profile string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("profile", profile),
		attribute.Bool("error", err != nil),
	}
	m.completions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.completionLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
