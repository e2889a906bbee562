// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/internal/search"
	"github.com/pdiddy/carsearch/internal/store"
	"github.com/pdiddy/carsearch/pkg/types"
)

type fakeSource struct {
	name     string
	listings []types.Listing
	err      error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Search(context.Context, types.SearchCriteria) ([]types.Listing, error) {
	return f.listings, f.err
}

func fakeRegistry(sources ...fakeSource) *search.Registry {
	r := search.NewRegistry()
	for _, s := range sources {
		r.Register(s.name, func(*httputil.Client) search.Source { return s })
	}
	return r
}

func car(price int, year uint) types.Listing {
	return types.Listing{
		Source:  "fake_a",
		Make:    "Skoda",
		Model:   "Octavia",
		Mileage: types.Km(50000),
		Year:    year,
		Price:   types.EurPrice(price),
		URL:     "https://example.test/car",
	}
}

func intp(n int) *int { return &n }

func TestExecuteSearchSortsThenLimits(t *testing.T) {
	registry := fakeRegistry(
		fakeSource{name: "fake_a", listings: []types.Listing{car(101, 1999), car(100, 2001), car(21, 2022)}},
		fakeSource{name: "fake_b", err: errors.New("down")},
	)
	cfg := types.Config{Output: types.OutputConfig{Format: types.FormatJSON}}
	req := searchRequest{
		Criteria: types.SearchCriteria{SortBy: "price", Limit: intp(2)},
		Sources:  []string{"fake_a", "fake_b"},
	}

	logger, hook := logtest.NewNullLogger()
	var buf bytes.Buffer
	report, err := executeSearch(context.Background(), cfg, req, registry, &buf, logger)
	require.NoError(t, err)

	var got []types.Listing
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 21, got[0].Price.Amount)
	assert.Equal(t, 100, got[1].Price.Amount)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Rendered)
	assert.Equal(t, []string{"fake_b"}, report.Failed)
	assert.NotEmpty(t, report.RunID)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["source"] == "fake_b" {
			warned = true
		}
	}
	assert.True(t, warned, "failed source should be logged")
}

func TestExecuteSearchAllSourcesFail(t *testing.T) {
	registry := fakeRegistry(fakeSource{name: "fake_a", err: errors.New("down")})
	var buf bytes.Buffer
	report, err := executeSearch(context.Background(), types.Config{}, searchRequest{Sources: []string{"fake_a"}}, registry, &buf, logrus.New())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.Zero(t, report.Rendered)
}

func TestExecuteSearchNoUsableSources(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	req := searchRequest{Sources: []string{"nowhere"}}

	_, err := executeSearch(context.Background(), types.Config{}, req, search.NewRegistry(), &bytes.Buffer{}, logger)
	assert.ErrorIs(t, err, errNoSources)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, `unknown source "nowhere"`)
}

func TestExecuteSearchDiagnosticsAndFormatFallback(t *testing.T) {
	registry := fakeRegistry(fakeSource{name: "fake_a", listings: []types.Listing{car(5, 2010)}})
	cfg := types.Config{Output: types.OutputConfig{Format: "xml"}}
	req := searchRequest{
		Criteria: types.SearchCriteria{SortBy: "colour"},
		Sources:  []string{"fake_a"},
	}

	logger, hook := logtest.NewNullLogger()
	var buf bytes.Buffer
	_, err := executeSearch(context.Background(), cfg, req, registry, &buf, logger)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "€5 - (2010, 50,000 km) Skoda Octavia [fake_a]")

	var messages []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			messages = append(messages, e.Message)
		}
	}
	assert.Contains(t, messages, `unrecognized sort field "colour", sorting by price ascending`)
	assert.Contains(t, messages, "unrecognized output format, using text")
}

func TestExecuteSearchArchivesSavesAndWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	registry := fakeRegistry(fakeSource{name: "fake_a", listings: []types.Listing{car(7, 2012), car(3, 2015)}})
	cfg := types.Config{
		Archive: types.ArchiveConfig{DSN: "sqlite:" + filepath.Join(dir, "runs.db")},
		Metrics: types.MetricsConfig{File: filepath.Join(dir, "carsearch.prom")},
		Search:  types.SearchConfig{Deadline: time.Minute},
	}
	req := searchRequest{
		Criteria:  types.SearchCriteria{Make: "Skoda", SortBy: "price"},
		Sources:   []string{"fake_a"},
		SaveQuery: filepath.Join(dir, "query.yaml"),
	}

	report, err := executeSearch(context.Background(), cfg, req, registry, &bytes.Buffer{}, logrus.New())
	require.NoError(t, err)

	archive, err := store.OpenSQLite(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer archive.Close()
	runs, err := archive.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, []string{"fake_a"}, runs[0].Sources)
	listings, err := archive.Listings(context.Background(), report.RunID)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, 3, listings[0].Price.Amount, "archived in rendered order")

	qf, err := search.ReadQueryFile(req.SaveQuery)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, qf.RunID)
	assert.Equal(t, req.Criteria, qf.Criteria)

	data, err := os.ReadFile(cfg.Metrics.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `carsearch_source_listings_total{source="fake_a"} 2`)
}

func TestSearchRequestFromFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	saved := search.NewQueryFile("r1", types.SearchCriteria{Make: "Audi", Model: "A4", MaxPrice: "9000"},
		[]string{"donedeal_ie"}, search.SearchOutput{}, 0)
	require.NoError(t, search.WriteQueryFile(path, saved))

	cmd := &cobra.Command{Use: "test"}
	defineSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Set("query-file", path))
	require.NoError(t, cmd.Flags().Set("model", "A6"))
	require.NoError(t, cmd.Flags().Set("limit", "0"))

	req, err := searchRequestFromFlags(cmd, types.Config{Search: types.SearchConfig{Sources: []string{"carzone_ie"}}})
	require.NoError(t, err)

	assert.Equal(t, "Audi", req.Criteria.Make)
	assert.Equal(t, "A6", req.Criteria.Model, "flag overrides query file")
	assert.Equal(t, "9000", req.Criteria.MaxPrice)
	require.NotNil(t, req.Criteria.Limit)
	assert.Zero(t, *req.Criteria.Limit)
	assert.Equal(t, []string{"donedeal_ie"}, req.Sources, "query file sources apply when --source is unset")
}

func TestSearchRequestFromFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	defineSearchFlags(cmd)

	req, err := searchRequestFromFlags(cmd, types.Config{})
	require.NoError(t, err)
	assert.Equal(t, types.SearchCriteria{}, req.Criteria)
	assert.Nil(t, req.Criteria.Limit)
	assert.Empty(t, req.Sources)
}

func TestSearchRequestMissingQueryFile(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	defineSearchFlags(cmd)
	require.NoError(t, cmd.Flags().Set("query-file", filepath.Join(t.TempDir(), "nope.yaml")))

	_, err := searchRequestFromFlags(cmd, types.Config{})
	assert.Error(t, err)
}
