// Package observability provides structured logging, metrics, and tracing
// for the CareerGini workflow orchestrator.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds workflow context to a logger.
// Returns a new logger with turn_id, session_id, and handler fields.
func EnrichLogger(logger *slog.Logger, turnID, sessionID, handler string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("turn_id", turnID),
		slog.String("session_id", sessionID),
		slog.String("handler", handler),
	)
}

// LogTurnStart logs the start of a workflow turn.
func LogTurnStart(logger *slog.Logger, turnID, sessionID string) {
	if logger == nil {
		return
	}
	logger.Info("turn starting",
		slog.String("turn_id", turnID),
		slog.String("session_id", sessionID),
	)
}

// LogTurnComplete logs successful turn completion.
func LogTurnComplete(logger *slog.Logger, turnID string, durationMs float64, cycles int) {
	if logger == nil {
		return
	}
	logger.Info("turn completed",
		slog.String("turn_id", turnID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("cycles", cycles),
	)
}

// LogTurnDegraded logs a turn that finished through forced aggregation
// (loop bound or deadline) rather than a router decision.
func LogTurnDegraded(logger *slog.Logger, turnID, reason string, cycles int) {
	if logger == nil {
		return
	}
	logger.Warn("turn forced to aggregate",
		slog.String("turn_id", turnID),
		slog.String("reason", reason),
		slog.Int("cycles", cycles),
	)
}

// LogRouteDecision logs the router's choice for one cycle.
func LogRouteDecision(logger *slog.Logger, turnID, decision, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("route decided",
		slog.String("turn_id", turnID),
		slog.String("decision", decision),
		slog.String("reason", reason),
	)
}

// LogHandlerStart logs handler dispatch.
func LogHandlerStart(logger *slog.Logger, handler string) {
	if logger == nil {
		return
	}
	logger.Debug("handler starting",
		slog.String("handler", handler),
	)
}

// LogHandlerComplete logs successful handler completion.
func LogHandlerComplete(logger *slog.Logger, handler string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("handler completed",
		slog.String("handler", handler),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogHandlerError logs a contained handler failure.
// The turn continues after this; the error lands in the handler's
// output slot, not in the caller's lap.
func LogHandlerError(logger *slog.Logger, handler string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("handler", handler),
		slog.String("error", err.Error()),
	)
}

// LogCompletionFallback logs a classification or generation call that fell
// back to its deterministic default.
func LogCompletionFallback(logger *slog.Logger, caller string, err error) {
	if logger == nil {
		return
	}
	reason := "malformed output"
	if err != nil {
		reason = err.Error()
	}
	logger.Warn("completion fallback",
		slog.String("caller", caller),
		slog.String("reason", reason),
	)
}

// LogHistoryError logs a persistence failure (non-fatal).
func LogHistoryError(logger *slog.Logger, sessionID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("history store failed",
		slog.String("session_id", sessionID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
