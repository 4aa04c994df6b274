// ════════════════════════════════════════════════════════════════════════════════════════════════
// Run History Store
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Crab Cups Ring Simulator
// Component: SQLite persistence
//
// Description:
//   Records every finished game in a single SQLite table so results can be listed later.
//   The indexed columns hold what history listings filter and sort on; the full run is kept
//   as JSON in the detail column.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"crabring/report"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		seed       TEXT NOT NULL,
		answer     TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		detail     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// Store is a handle on the run history database.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
	recent *sql.Stmt
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var err error
	s.insert, err = s.db.PrepareContext(ctx, `
		INSERT INTO runs (id, kind, seed, answer, created_at, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	s.recent, err = s.db.PrepareContext(ctx, `
		SELECT detail FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}
	return nil
}

// Save records r. An empty ID is filled with a fresh UUID and a zero
// CreatedAt with the current time; both are written back into r.
func (s *Store) Save(ctx context.Context, r *report.Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	detail, err := report.Encode(r)
	if err != nil {
		return err
	}
	if _, err := s.insert.ExecContext(ctx,
		r.ID, string(r.Kind), r.Seed, r.Answer, r.CreatedAt.UnixNano(), string(detail),
	); err != nil {
		return fmt.Errorf("saving run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*report.Run, error) {
	rows, err := s.recent.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*report.Run
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r, err := report.Decode([]byte(detail))
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close releases the prepared statements and the database.
func (s *Store) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	if s.recent != nil {
		s.recent.Close()
	}
	return s.db.Close()
}
