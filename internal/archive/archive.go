// Package archive persists pipeline reports in SQLite. Persistence is opt-in:
// nothing in the core writes here unless the caller asked for it.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vk/inventio/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	slug        TEXT    NOT NULL,
	seed        INTEGER NOT NULL,
	state       TEXT    NOT NULL,
	failed_stage TEXT   NOT NULL DEFAULT '',
	error       TEXT    NOT NULL DEFAULT '',
	report_yaml TEXT    NOT NULL,
	created_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug, id);
`

// Entry is one archived pipeline run.
type Entry struct {
	ID          int64
	Slug        string
	Seed        int64
	State       string
	FailedStage string
	Error       string
	ReportYAML  string
	CreatedAt   time.Time
}

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory archive for tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save archives one report alongside its rendered YAML and returns the row id.
func (s *Store) Save(ctx context.Context, r pipeline.Report, reportYAML []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (slug, seed, state, failed_stage, error, report_yaml, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Slug, r.Seed, string(r.State), r.FailedStage, r.Error, string(reportYAML),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("archive run for %s: %w", r.Slug, err)
	}
	return res.LastInsertId()
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, slug, seed, state, failed_stage, error, report_yaml, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
}

// BySlug returns the newest entries for one module, most recent first.
func (s *Store) BySlug(ctx context.Context, slug string, limit int) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, slug, seed, state, failed_stage, error, report_yaml, created_at
		 FROM runs WHERE slug = ? ORDER BY id DESC LIMIT ?`, slug, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Slug, &e.Seed, &e.State, &e.FailedStage, &e.Error, &e.ReportYAML, &created); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
