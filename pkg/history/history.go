// Package history provides persistent conversation storage: the message
// log of every turn, including injected system trace entries, retrievable
// per session for audit.
package history

import (
	"context"
	"errors"
	"time"
)

// Message is one persisted conversation entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnRecord summarizes one persisted turn.
type TurnRecord struct {
	SessionID string    `json:"session_id"`
	TurnID    string    `json:"turn_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists per-session conversation history.
// Implementations must be safe for concurrent use.
type Store interface {
	// AppendTurn records one completed turn's messages for a session.
	// Messages arrive in chronological order and are stored append-only.
	AppendTurn(ctx context.Context, sessionID, turnID string, messages []Message) error

	// Trace returns the full message log for a session in insertion
	// order, system trace entries included.
	// Returns an empty slice (not an error) for an unknown session.
	Trace(ctx context.Context, sessionID string) ([]Message, error)

	// Turns lists the persisted turns for a session, ordered by sequence.
	Turns(ctx context.Context, sessionID string) ([]TurnRecord, error)

	// DeleteSession removes all history for a session.
	// Returns nil if the session has no history.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for history operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
