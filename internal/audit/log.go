// Package audit keeps a SQLite trail of the human decisions taken on
// remediation plans. It does not store alert history.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event is one audited decision.
type Event struct {
	At        time.Time       `json:"at"`
	Actor     string          `json:"actor"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Recorder accepts audit events.
type Recorder interface {
	Record(ctx context.Context, actor, eventType, sessionID string, payload any) error
}

// Noop discards every event.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, string, string, string, any) error { return nil }

// Log writes audit events to a SQLite database.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and schema if needed.
func Open(dbPath string) (*Log, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audit db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure audit db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Log{db: db, now: time.Now}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			actor TEXT NOT NULL,
			type TEXT NOT NULL,
			session_id TEXT NOT NULL,
			payload_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS events_session ON events (session_id, id)`)
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

// Record implements Recorder.
func (l *Log) Record(ctx context.Context, actor, eventType, sessionID string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		"INSERT INTO events (ts, actor, type, session_id, payload_json) VALUES (?, ?, ?, ?, ?)",
		l.now().UTC().Format(time.RFC3339Nano),
		actor,
		eventType,
		sessionID,
		string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Events returns the events of a session in insertion order. An empty
// sessionID returns every event.
func (l *Log) Events(ctx context.Context, sessionID string) ([]Event, error) {
	query := "SELECT ts, actor, type, session_id, payload_json FROM events"
	var args []any
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY id"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev      Event
			ts      string
			payload string
		)
		if err := rows.Scan(&ts, &ev.Actor, &ev.Type, &ev.SessionID, &payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if ev.At, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", ts, err)
		}
		ev.Payload = json.RawMessage(payload)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close releases the database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
