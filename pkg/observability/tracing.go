package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the workflow tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("careergini.workflow")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTurnSpan starts a span for one full workflow turn.
	// Returns the context with span and the span itself.
	StartTurnSpan(ctx context.Context, sessionID, turnID string) (context.Context, trace.Span)

	// StartHandlerSpan starts a span for one handler dispatch.
	// The handler span should be a child of the turn span.
	StartHandlerSpan(ctx context.Context, handler string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartTurnSpan starts a span for one workflow turn.
func (m *otelSpanManager) StartTurnSpan(ctx context.Context, sessionID, turnID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "workflow.turn",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("turn.id", turnID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartHandlerSpan starts a span for one handler dispatch.
func (m *otelSpanManager) StartHandlerSpan(ctx context.Context, handler string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "workflow.handler."+handler,
		trace.WithAttributes(
			attribute.String("handler", handler),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
