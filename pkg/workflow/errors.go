package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidTurn indicates SubmitTurn was called with a missing
	// user ID, session ID, or message. This is the only condition the
	// public entry point raises for.
	ErrInvalidTurn = errors.New("invalid turn request")

	// ErrNoHandlers indicates the engine was built without any handlers.
	ErrNoHandlers = errors.New("no handlers registered")

	// ErrMaxCycles indicates the routing loop hit its bound and the
	// turn was forced to aggregate.
	ErrMaxCycles = errors.New("exceeded maximum routing cycles")
)

// HandlerError wraps a contained handler failure with context.
// It is recorded in the handler's output slot, never propagated to the
// turn's caller.
type HandlerError struct {
	// HandlerID is the identifier of the handler that failed.
	HandlerID string
	// Op is the operation that failed (e.g., "run").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %s: %v", e.HandlerID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from handler execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// HandlerID is the identifier of the handler that panicked.
	HandlerID string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked: %v", e.HandlerID, e.Value)
}

// MaxCyclesError provides context when the routing loop bound forces
// aggregation.
type MaxCyclesError struct {
	// Max is the configured cycle limit.
	Max int
	// LastRoute is the decision that would have dispatched next.
	LastRoute string
}

// Error implements the error interface.
func (e *MaxCyclesError) Error() string {
	return fmt.Sprintf("exceeded maximum routing cycles (%d) at %s", e.Max, e.LastRoute)
}

// Unwrap returns ErrMaxCycles for errors.Is support.
func (e *MaxCyclesError) Unwrap() error {
	return ErrMaxCycles
}
