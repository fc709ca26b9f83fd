// Package state persists build history in SQLite.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitegen/internal/site"
)

// HistoryStore records build reports. Use ":memory:" for tests.
type HistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// BuildRecord is one persisted build.
type BuildRecord struct {
	ID         int64
	BuildID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Documents  int
	Pages      int
	Plugins    int
	Failures   int
	Warnings   string
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		documents INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		plugins INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		warnings TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build report.
func (s *HistoryStore) Record(ctx context.Context, report *site.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, finished_at, outcome, documents, pages, plugins, failures, warnings) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		report.BuildID,
		report.StartedAt.Unix(),
		report.FinishedAt.Unix(),
		report.Outcome,
		report.Documents,
		report.PagesRendered,
		report.PluginsLoaded,
		report.PluginFailures,
		strings.Join(report.Warnings, "\n"),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, started_at, finished_at, outcome, documents, pages, plugins, failures, warnings FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var started, finished int64
		var warnings sql.NullString
		if err := rows.Scan(&rec.ID, &rec.BuildID, &started, &finished, &rec.Outcome,
			&rec.Documents, &rec.Pages, &rec.Plugins, &rec.Failures, &warnings); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.FinishedAt = time.Unix(finished, 0)
		rec.Warnings = warnings.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
