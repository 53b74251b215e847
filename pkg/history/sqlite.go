package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists conversation history to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite history store.
// The path should be a file path (e.g., "./history.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			session_id TEXT NOT NULL,
			turn_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (session_id, turn_id)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create turns table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			turn_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AppendTurn implements Store.
func (s *SQLiteStore) AppendTurn(ctx context.Context, sessionID, turnID string, messages []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	// Sequence is max + 1 within the session.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO turns (session_id, turn_id, sequence, timestamp)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(sequence) FROM turns WHERE session_id = ?), 0) + 1,
			?
		)
		ON CONFLICT(session_id, turn_id) DO UPDATE SET
			timestamp = excluded.timestamp
	`, sessionID, turnID, sessionID, now); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}

	for i, m := range messages {
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (session_id, turn_id, position, role, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sessionID, turnID, i, m.Role, m.Content, createdAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}
	return nil
}

// Trace implements Store.
func (s *SQLiteStore) Trace(ctx context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.role, m.content, m.created_at
		FROM messages m
		JOIN turns t ON t.session_id = m.session_id AND t.turn_id = m.turn_id
		WHERE m.session_id = ?
		ORDER BY t.sequence, m.position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load trace: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Turns implements Store.
func (s *SQLiteStore) Turns(ctx context.Context, sessionID string) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT turn_id, sequence, timestamp
		FROM turns
		WHERE session_id = ?
		ORDER BY sequence
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var r TurnRecord
		var timestamp string
		if err := rows.Scan(&r.TurnID, &r.Sequence, &timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		r.SessionID = sessionID
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return records, nil
}

// DeleteSession implements Store.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session turns: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
