// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records conversion sessions and exports in a SQLite
// database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

const (
	appDir = "flomo2obsidian"
	dbFile = "history.db"

	// timeLayout has fixed-width fractions so stored times sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the history SQLite database. It implements
// session.Recorder.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the database path under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appDir, dbFile), nil
}

// Open opens or creates the history database at path, creating the schema
// if it does not exist. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			started_at TEXT NOT NULL,
			entries INTEGER NOT NULL,
			notes INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			earliest TEXT,
			latest TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS exports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			output TEXT NOT NULL,
			exported_at TEXT NOT NULL,
			range_start TEXT,
			range_end TEXT,
			days INTEGER NOT NULL,
			notes INTEGER NOT NULL,
			attachments INTEGER NOT NULL,
			missing INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_session_id ON exports(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordSession inserts or replaces a session record.
func (s *Store) RecordSession(ctx context.Context, rec types.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, input, started_at, entries, notes, skipped, earliest, latest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			input=excluded.input, started_at=excluded.started_at, entries=excluded.entries,
			notes=excluded.notes, skipped=excluded.skipped,
			earliest=excluded.earliest, latest=excluded.latest`,
		rec.ID, rec.Input, formatTime(rec.StartedAt), rec.Entries, rec.Notes, rec.Skipped,
		formatTime(rec.Earliest), formatTime(rec.Latest),
	)
	if err != nil {
		return fmt.Errorf("recording session %s: %w", rec.ID, err)
	}
	return nil
}

// RecordExport appends an export record. The session must already be
// recorded.
func (s *Store) RecordExport(ctx context.Context, rec types.ExportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (session_id, output, exported_at, range_start, range_end, days, notes, attachments, missing)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Output, formatTime(rec.ExportedAt),
		formatTime(rec.Range.Start), formatTime(rec.Range.End),
		rec.Days, rec.Notes, rec.Attachments, rec.Missing,
	)
	if err != nil {
		return fmt.Errorf("recording export for session %s: %w", rec.SessionID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
