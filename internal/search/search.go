// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries used-car listing providers and merges their results.
// Each provider is a Source; the Aggregator runs every Source concurrently
// and keeps whatever succeeded.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/internal/logging"
	"github.com/pdiddy/carsearch/internal/metrics"
	"github.com/pdiddy/carsearch/pkg/types"
)

// Source retrieves every listing matching criteria from one provider,
// paginating until the provider reports no further pages. A failed page
// aborts the whole search: Search returns either all listings or a
// *SearchError, never a partial result.
type Source interface {
	Name() string
	Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Listing, error)
}

// FailureKind classifies a SearchError.
type FailureKind int

const (
	TransportFailure FailureKind = iota
	DecodeFailure
)

func (k FailureKind) String() string {
	if k == DecodeFailure {
		return "decode"
	}
	return "transport"
}

// SearchError is the single error type returned by sources.
type SearchError struct {
	Source string
	Page   int
	Kind   FailureKind
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: page %d: %s failure: %v", e.Source, e.Page, e.Kind, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// newSearchError wraps a page fetch error from httputil.
func newSearchError(source string, page int, err error) *SearchError {
	kind := TransportFailure
	var de *httputil.DecodeError
	if errors.As(err, &de) {
		kind = DecodeFailure
	}
	return &SearchError{Source: source, Page: page, Kind: kind, Err: err}
}

// SourceFailure records a source dropped from the merged result.
type SourceFailure struct {
	Source string
	Err    error
}

// SearchOutput holds the merged listings and the sources that failed.
type SearchOutput struct {
	Listings  []types.Listing
	Failures  []SourceFailure
	Succeeded int
}

// Aggregator fans criteria out to its sources and merges the results.
type Aggregator struct {
	sources []Source
	logger  logrus.FieldLogger
	metrics *metrics.Recorder
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used to report failed sources.
func WithLogger(l logrus.FieldLogger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// WithMetrics records per-source outcomes on r.
func WithMetrics(r *metrics.Recorder) AggregatorOption {
	return func(a *Aggregator) { a.metrics = r }
}

// NewAggregator returns an Aggregator over sources.
func NewAggregator(sources []Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sources: append([]Source(nil), sources...),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns the names of the configured sources.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

// Search runs every source concurrently and waits for all of them. Failed
// sources are dropped and reported in Failures; Search itself never fails.
// Listings from one source stay contiguous and in discovery order; the order
// between sources follows completion order.
func (a *Aggregator) Search(ctx context.Context, criteria types.SearchCriteria) SearchOutput {
	type sourceResult struct {
		name     string
		listings []types.Listing
		err      error
	}

	ch := make(chan sourceResult, len(a.sources))
	var wg sync.WaitGroup

	for _, s := range a.sources {
		wg.Add(1)
		go func(s Source, criteria types.SearchCriteria) {
			defer wg.Done()
			start := time.Now()
			listings, err := s.Search(ctx, criteria)
			a.metrics.ObserveSource(s.Name(), len(listings), time.Since(start), err)
			ch <- sourceResult{name: s.Name(), listings: listings, err: err}
		}(s, criteria.Clone())
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	out := SearchOutput{Listings: []types.Listing{}}
	for r := range ch {
		if r.err != nil {
			out.Failures = append(out.Failures, SourceFailure{Source: r.name, Err: r.err})
			a.logger.WithFields(logrus.Fields{
				"source": r.name,
				"error":  r.err.Error(),
			}).Warn("source failed, results unavailable")
			continue
		}
		out.Succeeded++
		out.Listings = append(out.Listings, r.listings...)
		a.logger.WithFields(logrus.Fields{
			"source":   r.name,
			"listings": len(r.listings),
		}).Debug("source finished")
	}
	return out
}
