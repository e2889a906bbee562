// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdiddy/carsearch/pkg/types"
)

const postgresConnectTimeout = 10 * time.Second

// Postgres is an Archive backed by a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, verifies the connection and ensures the
// schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS carsearch_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		criteria JSONB NOT NULL,
		sources JSONB NOT NULL,
		failed_sources JSONB NOT NULL,
		total INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS carsearch_listings (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES carsearch_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source TEXT NOT NULL,
		make TEXT,
		model TEXT,
		year BIGINT,
		mileage BIGINT,
		mileage_unit TEXT,
		price BIGINT,
		currency TEXT,
		url TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_carsearch_listings_run_id ON carsearch_listings(run_id);
	CREATE INDEX IF NOT EXISTS idx_carsearch_runs_started_at ON carsearch_runs(started_at);
	`
	if _, err := p.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// SaveRun inserts the run row, then queues every listing in one batch,
// all inside a transaction.
func (p *Postgres) SaveRun(ctx context.Context, r Run) error {
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

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO carsearch_runs (id, started_at, criteria, sources, failed_sources, total)
		 VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6)`,
		r.ID, r.StartedAt, criteria, sources, failed, r.Total,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}

	if len(r.Listings) > 0 {
		batch := &pgx.Batch{}
		insertSQL := `
		INSERT INTO carsearch_listings (run_id, position, source, make, model, year, mileage, mileage_unit, price, currency, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		for i, l := range r.Listings {
			row := toRow(l)
			batch.Queue(insertSQL,
				r.ID, i, row.Source, row.Make, row.Model, row.Year,
				row.Mileage, row.MileageUnit, row.Price, row.Currency, row.URL,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range r.Listings {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("batch insert failed at row %d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("closing batch: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Runs returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (p *Postgres) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT r.id, r.started_at, r.criteria::text, r.sources::text, r.failed_sources::text, r.total,
		(SELECT count(*) FROM carsearch_listings l WHERE l.run_id = r.id)
	FROM carsearch_runs r
	ORDER BY r.started_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s                         RunSummary
			criteria, sources, failed string
			stored                    int64
		)
		if err := rows.Scan(&s.ID, &s.StartedAt, &criteria, &sources, &failed, &s.Total, &stored); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		s.Stored = int(stored)
		s.StartedAt = s.StartedAt.UTC()
		if err := decodeSummary(&s, criteria, sources, failed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Listings returns the listings stored for runID in rendered order.
func (p *Postgres) Listings(ctx context.Context, runID string) ([]types.Listing, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT source, make, model, year, mileage, mileage_unit, price, currency, url
		 FROM carsearch_listings WHERE run_id = $1 ORDER BY position`, runID)
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
