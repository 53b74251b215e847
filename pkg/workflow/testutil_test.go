package workflow

import (
	"context"
)

// Test handler implementations used across tests

// stubHandler returns a fixed result or error.
type stubHandler struct {
	id     string
	result PartialResult
	err    error
	calls  int
}

func (h *stubHandler) ID() string { return h.id }

func (h *stubHandler) Run(_ context.Context, _ *State) (PartialResult, error) {
	h.calls++
	return h.result, h.err
}

// panicHandler panics with the given value.
type panicHandler struct {
	id    string
	value any
}

func (h *panicHandler) ID() string { return h.id }

func (h *panicHandler) Run(_ context.Context, _ *State) (PartialResult, error) {
	panic(h.value)
}

// slowHandler blocks until its context is done.
type slowHandler struct {
	id string
}

func (h *slowHandler) ID() string { return h.id }

func (h *slowHandler) Run(ctx context.Context, _ *State) (PartialResult, error) {
	<-ctx.Done()
	return PartialResult{}, ctx.Err()
}

// observeHandler runs a callback against the state, then succeeds.
type observeHandler struct {
	id string
	fn func(*State)
}

func (h *observeHandler) ID() string { return h.id }

func (h *observeHandler) Run(_ context.Context, state *State) (PartialResult, error) {
	h.fn(state)
	return PartialResult{Summary: "observed"}, nil
}

func observerHandler(id string, fn func(*State)) *observeHandler {
	return &observeHandler{id: id, fn: fn}
}

// okHandler builds a stub that succeeds with a summary.
func okHandler(id, summary string) *stubHandler {
	return &stubHandler{id: id, result: PartialResult{Summary: summary}}
}

// fullHandlerSet registers a succeeding stub for every known ID.
func fullHandlerSet() *HandlerSet {
	return NewHandlerSet(
		okHandler(HandlerProfile, "profile guidance"),
		okHandler(HandlerSkillsGap, "gap analysis"),
		okHandler(HandlerJobSearch, "job matches"),
		okHandler(HandlerResume, "resume feedback"),
		okHandler(HandlerLearning, "learning resources"),
	)
}

// newTestState builds a state seeded with one user message.
func newTestState(message string) *State {
	return NewState("user-1", "session-1", "turn-1", message)
}
