// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/carsearch/pkg/types"
)

// sqliteTimeLayout has fixed width so started_at sorts chronologically
// as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is an Archive backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the archive database at path, creating the
// parent directory and schema if needed.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			criteria TEXT NOT NULL,
			sources TEXT NOT NULL,
			failed_sources TEXT NOT NULL,
			total INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source TEXT NOT NULL,
			make TEXT,
			model TEXT,
			year INTEGER,
			mileage INTEGER,
			mileage_unit TEXT,
			price INTEGER,
			currency TEXT,
			url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun inserts the run and its listings in one transaction.
func (s *SQLite) SaveRun(ctx context.Context, r Run) error {
	r = prepare(r)

	criteria, err := encodeJSON(r.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}
	sources, err := encodeJSON(r.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	failed, err := encodeJSON(r.FailedSources)
	if err != nil {
		return fmt.Errorf("encoding failed sources: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, criteria, sources, failed_sources, total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(sqliteTimeLayout), criteria, sources, failed, r.Total,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO listings (run_id, position, source, make, model, year, mileage, mileage_unit, price, currency, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range r.Listings {
		row := toRow(l)
		_, err := stmt.ExecContext(ctx,
			r.ID, i, row.Source, row.Make, row.Model, row.Year,
			row.Mileage, row.MileageUnit, row.Price, row.Currency, row.URL,
		)
		if err != nil {
			return fmt.Errorf("inserting listing %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Runs returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *SQLite) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.criteria, r.sources, r.failed_sources, r.total,
			(SELECT count(*) FROM listings l WHERE l.run_id = r.id)
		 FROM runs r
		 ORDER BY r.started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum                       RunSummary
			started                   string
			criteria, sources, failed string
		)
		if err := rows.Scan(&sum.ID, &started, &criteria, &sources, &failed, &sum.Total, &sum.Stored); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if sum.StartedAt, err = time.Parse(sqliteTimeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing start time of run %s: %w", sum.ID, err)
		}
		if err := decodeSummary(&sum, criteria, sources, failed); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Listings returns the listings stored for runID in rendered order.
func (s *SQLite) Listings(ctx context.Context, runID string) ([]types.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, make, model, year, mileage, mileage_unit, price, currency, url
		 FROM listings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	out := []types.Listing{}
	for rows.Next() {
		var r listingRow
		if err := rows.Scan(&r.Source, &r.Make, &r.Model, &r.Year, &r.Mileage,
			&r.MileageUnit, &r.Price, &r.Currency, &r.URL); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		out = append(out, r.listing())
	}
	return out, rows.Err()
}
