package workflow

import (
	"context"
	"sync"
)

// Handler is a pluggable unit that contributes one partial result
// toward answering a turn.
//
// Run reads whatever it needs from the state (profile snapshot, recent
// messages, prior handler outputs) and returns its structured result.
// Handlers must not write to the state; the engine merges the result
// into HandlerOutputs and appends trace messages on their behalf.
//
// A returned error is contained at the dispatch boundary: it becomes
// an error entry for this handler, never a failed turn. Handlers should
// prefer degrading to a documented default result over returning errors.
type Handler interface {
	// ID returns the stable handler identifier used for routing and
	// output keys.
	ID() string

	// Run produces this handler's contribution for the turn.
	Run(ctx context.Context, state *State) (PartialResult, error)
}

// HandlerSet is a thread-safe, order-preserving handler registry.
// Registration order determines section order during aggregation.
type HandlerSet struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

// NewHandlerSet creates a registry with the given handlers.
func NewHandlerSet(handlers ...Handler) *HandlerSet {
	hs := &HandlerSet{handlers: make(map[string]Handler)}
	for _, h := range handlers {
		hs.Register(h)
	}
	return hs
}

// Register adds or replaces a handler. Replacing keeps the original
// position in the ordering.
func (hs *HandlerSet) Register(h Handler) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	id := h.ID()
	if _, exists := hs.handlers[id]; !exists {
		hs.order = append(hs.order, id)
	}
	hs.handlers[id] = h
}

// Get returns the handler for an ID and whether it exists.
func (hs *HandlerSet) Get(id string) (Handler, bool) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	h, ok := hs.handlers[id]
	return h, ok
}

// Has returns true if the ID is registered.
func (hs *HandlerSet) Has(id string) bool {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	_, ok := hs.handlers[id]
	return ok
}

// IDs returns the handler identifiers in registration order.
func (hs *HandlerSet) IDs() []string {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	out := make([]string, len(hs.order))
	copy(out, hs.order)
	return out
}

// Len returns the number of registered handlers.
func (hs *HandlerSet) Len() int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return len(hs.handlers)
}
