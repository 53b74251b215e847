package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory history store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]TurnRecord // sessionID -> turns in sequence order
	messages map[string][]Message    // sessionID -> full message log
	closed   bool
}

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns:    make(map[string][]TurnRecord),
		messages: make(map[string][]Message),
	}
}

// AppendTurn implements Store.
func (m *MemoryStore) AppendTurn(_ context.Context, sessionID, turnID string, messages []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.turns[sessionID] = append(m.turns[sessionID], TurnRecord{
		SessionID: sessionID,
		TurnID:    turnID,
		Sequence:  len(m.turns[sessionID]) + 1,
		Timestamp: time.Now().UTC(),
	})

	for _, msg := range messages {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		m.messages[sessionID] = append(m.messages[sessionID], msg)
	}
	return nil
}

// Trace implements Store.
func (m *MemoryStore) Trace(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	// Return a copy to prevent modification
	log := m.messages[sessionID]
	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}

// Turns implements Store.
func (m *MemoryStore) Turns(_ context.Context, sessionID string) ([]TurnRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	turns := m.turns[sessionID]
	out := make([]TurnRecord, len(turns))
	copy(out, turns)
	return out, nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.turns, sessionID)
	delete(m.messages, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.turns = nil
	m.messages = nil
	return nil
}

// Len returns the total number of stored messages across all sessions.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, log := range m.messages {
		count += len(log)
	}
	return count
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)
