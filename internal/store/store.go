// Package store provides SQLite-backed persistence for the publish ledger:
// the pages each run created or updated, and a summary of every run.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// PageRecord is the last known publication of a page title in a space.
type PageRecord struct {
	SpaceKey    string
	Title       string
	PageID      string
	ParentID    string
	Document    string
	Action      string
	RunID       string
	PublishedAt time.Time
}

// RunRecord summarizes one publish run.
type RunRecord struct {
	RunID     string
	SpaceKey  string
	DocsDir   string
	State     string
	Documents int
	Failed    int
	StartedAt time.Time
}

// Store wraps a SQLite database for the publish ledger.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// all required tables exist. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS published_pages (
			space_key    TEXT NOT NULL,
			title        TEXT NOT NULL,
			page_id      TEXT NOT NULL,
			parent_id    TEXT NOT NULL DEFAULT '',
			document     TEXT NOT NULL,
			action       TEXT NOT NULL,
			run_id       TEXT NOT NULL,
			published_at DATETIME NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (space_key, title)
		)`,
		`CREATE TABLE IF NOT EXISTS publish_runs (
			run_id     TEXT PRIMARY KEY,
			space_key  TEXT NOT NULL,
			docs_dir   TEXT NOT NULL,
			state      TEXT NOT NULL,
			documents  INTEGER NOT NULL,
			failed     INTEGER NOT NULL,
			started_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// RecordPage stores the publication of a page. An earlier record for the
// same space and title is replaced.
func (s *Store) RecordPage(rec PageRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO published_pages
		 (space_key, title, page_id, parent_id, document, action, run_id, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
		rec.SpaceKey, rec.Title, rec.PageID, rec.ParentID, rec.Document, rec.Action, rec.RunID,
	)
	if err != nil {
		return fmt.Errorf("record page: %w", err)
	}
	return nil
}

// GetPage retrieves the record for a title in a space.
// Returns nil if the title was never published.
func (s *Store) GetPage(spaceKey, title string) (*PageRecord, error) {
	var rec PageRecord
	err := s.db.QueryRow(
		`SELECT space_key, title, page_id, parent_id, document, action, run_id, published_at
		 FROM published_pages WHERE space_key = ? AND title = ?`, spaceKey, title,
	).Scan(&rec.SpaceKey, &rec.Title, &rec.PageID, &rec.ParentID, &rec.Document, &rec.Action, &rec.RunID, &rec.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return &rec, nil
}

// ListPages returns the pages of a space in publication order. An empty
// spaceKey lists every space.
func (s *Store) ListPages(spaceKey string) ([]PageRecord, error) {
	rows, err := s.db.Query(
		`SELECT space_key, title, page_id, parent_id, document, action, run_id, published_at
		 FROM published_pages WHERE ? = '' OR space_key = ?
		 ORDER BY rowid`, spaceKey, spaceKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var records []PageRecord
	for rows.Next() {
		var rec PageRecord
		if err := rows.Scan(&rec.SpaceKey, &rec.Title, &rec.PageID, &rec.ParentID, &rec.Document, &rec.Action, &rec.RunID, &rec.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveRun persists a run summary, replacing an earlier one with the same id.
func (s *Store) SaveRun(run RunRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO publish_runs
		 (run_id, space_key, docs_dir, state, documents, failed, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, datetime('now'))`,
		run.RunID, run.SpaceKey, run.DocsDir, run.State, run.Documents, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT run_id, space_key, docs_dir, state, documents, failed, started_at
		 FROM publish_runs ORDER BY rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.SpaceKey, &r.DocsDir, &r.State, &r.Documents, &r.Failed, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
