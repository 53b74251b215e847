package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put stores a record, replacing any existing one for the same user.
func (s *MemoryStore) Put(record *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = record
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, userID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers can't mutate the stored record.
	clone := *r
	return &clone, nil
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)
