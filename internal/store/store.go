// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives finished search runs. The archive is history
// only: it is never read to answer a search.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/carsearch/pkg/types"
)

// ErrUnsupportedDSN is returned by Open for an unrecognized DSN scheme.
var ErrUnsupportedDSN = errors.New("unsupported archive DSN")

// Run is one finished search: its criteria, which sources ran and the
// listings that were rendered.
type Run struct {
	ID            string
	StartedAt     time.Time
	Criteria      types.SearchCriteria
	Sources       []string
	FailedSources []string
	// Total counts aggregated listings before the pipeline ran.
	Total    int
	Listings []types.Listing
}

// RunSummary is a Run without its listings.
type RunSummary struct {
	ID            string               `json:"id" yaml:"id"`
	StartedAt     time.Time            `json:"started_at" yaml:"started_at"`
	Criteria      types.SearchCriteria `json:"criteria" yaml:"criteria"`
	Sources       []string             `json:"sources" yaml:"sources"`
	FailedSources []string             `json:"failed_sources,omitempty" yaml:"failed_sources,omitempty"`
	Total         int                  `json:"total" yaml:"total"`
	Stored        int                  `json:"stored" yaml:"stored"`
}

// Archive persists runs.
type Archive interface {
	// SaveRun stores r and its listings atomically.
	SaveRun(ctx context.Context, r Run) error
	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]RunSummary, error)
	// Listings returns the stored listings of one run in rendered order.
	Listings(ctx context.Context, runID string) ([]types.Listing, error)
	Close() error
}

// Open connects to the archive named by dsn: "sqlite:<path>" (or a bare
// path ending in .db) for SQLite, postgres:// or postgresql:// for
// PostgreSQL.
func Open(ctx context.Context, dsn string) (Archive, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	case strings.HasPrefix(dsn, "sqlite:"), strings.HasSuffix(dsn, ".db"):
		s, err := OpenSQLite(strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
}

// prepare fills in defaults before a run is written.
func prepare(r Run) Run {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	r.StartedAt = r.StartedAt.UTC()
	return r
}

// listingRow is the column form of a Listing shared by both backends.
type listingRow struct {
	Source      string
	Make        string
	Model       string
	Year        int64
	Mileage     int64
	MileageUnit string
	Price       int64
	Currency    string
	URL         string
}

func toRow(l types.Listing) listingRow {
	return listingRow{
		Source:      l.Source,
		Make:        l.Make,
		Model:       l.Model,
		Year:        int64(l.Year),
		Mileage:     int64(l.Mileage.Value),
		MileageUnit: l.Mileage.Unit.String(),
		Price:       int64(l.Price.Amount),
		Currency:    l.Price.Currency.String(),
		URL:         l.URL,
	}
}

func (r listingRow) listing() types.Listing {
	l := types.Listing{
		Source: r.Source,
		Make:   r.Make,
		Model:  r.Model,
		Year:   uint(r.Year),
		URL:    r.URL,
	}
	if unit, ok := types.ParseDistanceUnit(r.MileageUnit); ok {
		l.Mileage = types.Mileage{Unit: unit, Value: int(r.Mileage)}
	}
	if cur, ok := types.ParseCurrency(r.Currency); ok {
		l.Price = types.Price{Currency: cur, Amount: int(r.Price)}
	}
	return l
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeSummary fills the JSON encoded columns of s.
func decodeSummary(s *RunSummary, criteria, sources, failed string) error {
	if err := json.Unmarshal([]byte(criteria), &s.Criteria); err != nil {
		return fmt.Errorf("decoding criteria of run %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(sources), &s.Sources); err != nil {
		return fmt.Errorf("decoding sources of run %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(failed), &s.FailedSources); err != nil {
		return fmt.Errorf("decoding failed sources of run %s: %w", s.ID, err)
	}
	return nil
}
