// Package db persists sessions and their conversation history in
// SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clauselens/clauselens/internal/memory"
)

// DB wraps a sql.DB with clauselens-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    document_source TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    timestamp DATETIME NOT NULL,
    user_input TEXT NOT NULL,
    agent_response TEXT NOT NULL,
    context TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
`

// SessionRecord describes a stored session.
type SessionRecord struct {
	ID             string
	DocumentSource string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaveConversation stores the full conversation of a session,
// replacing any turns stored for it before. The session row is created
// on first save.
func (d *DB) SaveConversation(ctx context.Context, sessionID, documentSource string, turns []memory.Turn) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, document_source) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_source = excluded.document_source,
			updated_at = datetime('now')`,
		sessionID, documentSource)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", sessionID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing turns for %s: %w", sessionID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turns (session_id, timestamp, user_input, agent_response, context)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing turn insert: %w", err)
	}
	defer stmt.Close()

	for _, turn := range turns {
		turnContext := "{}"
		if turn.Context != nil {
			data, err := json.Marshal(turn.Context)
			if err != nil {
				return fmt.Errorf("marshalling turn context: %w", err)
			}
			turnContext = string(data)
		}
		_, err := stmt.ExecContext(ctx,
			sessionID,
			turn.Timestamp.UTC().Format(time.RFC3339Nano),
			turn.UserInput,
			turn.AgentResponse,
			turnContext)
		if err != nil {
			return fmt.Errorf("inserting turn: %w", err)
		}
	}

	return tx.Commit()
}

// LoadConversation returns the stored turns of a session, oldest
// first. A session with no stored turns yields an empty slice.
func (d *DB) LoadConversation(ctx context.Context, sessionID string) ([]memory.Turn, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT timestamp, user_input, agent_response, context
		FROM turns WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []memory.Turn
	for rows.Next() {
		var (
			ts          string
			turn        memory.Turn
			turnContext string
		)
		if err := rows.Scan(&ts, &turn.UserInput, &turn.AgentResponse, &turnContext); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if turn.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parsing turn timestamp %q: %w", ts, err)
		}
		if turnContext != "" && turnContext != "{}" {
			if err := json.Unmarshal([]byte(turnContext), &turn.Context); err != nil {
				return nil, fmt.Errorf("unmarshalling turn context: %w", err)
			}
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// ListSessions returns all stored sessions, most recently updated
// first.
func (d *DB) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT id, document_source, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentSource, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteSession removes a session and its turns.
func (d *DB) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := d.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting session %s: %w", sessionID, err)
	}
	return nil
}
