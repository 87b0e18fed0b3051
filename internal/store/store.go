// Package store provides SQLite-based persistence of extracted
// sessions and their semantic actions.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"actiontrace/internal/action"
)

// Schema for the actiontrace session store.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    source_path   TEXT NOT NULL,
    ingested_at   INTEGER NOT NULL,
    event_count   INTEGER NOT NULL,
    action_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id    INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    seq           INTEGER NOT NULL,
    type          TEXT NOT NULL,
    timestamp_ms  INTEGER NOT NULL,
    data          TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_actions_session_seq ON actions(session_id, seq);
CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(type);
`

// SessionInfo describes one stored session.
type SessionInfo struct {
	ID          int64
	SourcePath  string
	IngestedAt  time.Time
	EventCount  int
	ActionCount int
}

// Summary aggregates the store contents.
type Summary struct {
	Sessions int
	Actions  int
	ByType   map[string]int
}

// Store is the SQLite session store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and
// applies the schema. The path ":memory:" gives an in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession inserts a session and its actions in one transaction and
// returns the session ID.
func (s *Store) SaveSession(sourcePath string, eventCount int, actions []action.Action) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO sessions (source_path, ingested_at, event_count, action_count)
		VALUES (?, ?, ?, ?)`,
		sourcePath, time.Now().UnixMilli(), eventCount, len(actions),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get session id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO actions (session_id, seq, type, timestamp_ms, data)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for seq, a := range actions {
		payload, err := json.Marshal(a.Record().Data)
		if err != nil {
			return 0, fmt.Errorf("encode action %d: %w", seq, err)
		}
		if _, err := stmt.Exec(sessionID, seq, a.Type(), a.Time(), string(payload)); err != nil {
			return 0, fmt.Errorf("insert action %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return sessionID, nil
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT id, source_path, ingested_at, event_count, action_count
		FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var ingestedMs int64
		if err := rows.Scan(&info.ID, &info.SourcePath, &ingestedMs, &info.EventCount, &info.ActionCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.IngestedAt = time.UnixMilli(ingestedMs)
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// Session retrieves one session by ID, or nil if absent.
func (s *Store) Session(id int64) (*SessionInfo, error) {
	var info SessionInfo
	var ingestedMs int64
	err := s.db.QueryRow(`
		SELECT id, source_path, ingested_at, event_count, action_count
		FROM sessions WHERE id = ?`, id,
	).Scan(&info.ID, &info.SourcePath, &ingestedMs, &info.EventCount, &info.ActionCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	info.IngestedAt = time.UnixMilli(ingestedMs)
	return &info, nil
}

// Actions retrieves a session's action records in sequence order.
func (s *Store) Actions(sessionID int64) ([]action.Record, error) {
	rows, err := s.db.Query(`
		SELECT type, timestamp_ms, data
		FROM actions WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var records []action.Record
	for rows.Next() {
		var r action.Record
		var payload string
		if err := rows.Scan(&r.Type, &r.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		var data any
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			return nil, fmt.Errorf("decode action payload: %w", err)
		}
		r.Data = data
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summarize aggregates session and per-type action counts.
func (s *Store) Summarize() (*Summary, error) {
	summary := &Summary{ByType: make(map[string]int)}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&summary.Sessions); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM actions`).Scan(&summary.Actions); err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}

	rows, err := s.db.Query(`SELECT type, COUNT(*) FROM actions GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count actions by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		summary.ByType[typ] = n
	}
	return summary, rows.Err()
}
