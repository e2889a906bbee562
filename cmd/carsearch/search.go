// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/carsearch/internal/emit"
	"github.com/pdiddy/carsearch/internal/metrics"
	"github.com/pdiddy/carsearch/internal/pipeline"
	"github.com/pdiddy/carsearch/internal/search"
	"github.com/pdiddy/carsearch/internal/store"
	"github.com/pdiddy/carsearch/pkg/types"
)

var errNoSources = errors.New("no usable sources selected")

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search every selected source and print the merged listings",
	Long: `Search sends the same criteria to every selected source in parallel and
merges whatever comes back. Filters are passed to each site unchanged, so
use the values the sites themselves accept.

Sorting always happens before --limit is applied.`,
	Example: `  carsearch search --make Skoda --model Octavia --max-price 15000 --sort-by price
  carsearch search --make Toyota --source donedeal_ie --format json --limit 20
  carsearch search --query-file octavia.yaml --archive sqlite:carsearch.db`,
	RunE: runSearch,
}

// criteriaFlags maps flag names onto the string fields of SearchCriteria.
var criteriaFlags = []struct {
	name  string
	usage string
	field func(*types.SearchCriteria) *string
}{
	{"make", "vehicle make, e.g. Skoda", func(c *types.SearchCriteria) *string { return &c.Make }},
	{"model", "vehicle model, e.g. Octavia", func(c *types.SearchCriteria) *string { return &c.Model }},
	{"min-year", "earliest registration year", func(c *types.SearchCriteria) *string { return &c.MinYear }},
	{"max-year", "latest registration year", func(c *types.SearchCriteria) *string { return &c.MaxYear }},
	{"min-mileage", "minimum mileage", func(c *types.SearchCriteria) *string { return &c.MinMileage }},
	{"max-mileage", "maximum mileage", func(c *types.SearchCriteria) *string { return &c.MaxMileage }},
	{"min-price", "minimum price", func(c *types.SearchCriteria) *string { return &c.MinPrice }},
	{"max-price", "maximum price", func(c *types.SearchCriteria) *string { return &c.MaxPrice }},
	{"sort-by", "sort field: price, year or mileage", func(c *types.SearchCriteria) *string { return &c.SortBy }},
	{"sort-order", "sort order: asc or desc (default asc)", func(c *types.SearchCriteria) *string { return &c.SortOrder }},
}

func init() {
	defineSearchFlags(searchCmd)

	_ = viper.BindPFlag("search.sources", searchCmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("search.deadline", searchCmd.Flags().Lookup("deadline"))
	_ = viper.BindPFlag("output.format", searchCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("http.timeout", searchCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("http.user_agent", searchCmd.Flags().Lookup("user-agent"))
	_ = viper.BindPFlag("archive.dsn", searchCmd.Flags().Lookup("archive"))
	_ = viper.BindPFlag("metrics.file", searchCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(searchCmd)
}

func defineSearchFlags(cmd *cobra.Command) {
	for _, f := range criteriaFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().Int("limit", 0, "show at most this many listings")
	cmd.Flags().StringSlice("source", nil, "sources to query (default all; see 'carsearch sources')")
	cmd.Flags().String("format", "", "output format: text, json, csv or yaml (default text)")
	cmd.Flags().Duration("timeout", 0, "per-request HTTP timeout (default 30s)")
	cmd.Flags().Duration("deadline", 0, "overall deadline for the search, 0 for none")
	cmd.Flags().String("user-agent", "", "User-Agent header sent to sources")
	cmd.Flags().String("archive", "", "archive the run: sqlite:<path> or postgres://...")
	cmd.Flags().String("metrics-file", "", "write run metrics in Prometheus textfile format")
	cmd.Flags().String("query-file", "", "load criteria from a saved query file; flags override it")
	cmd.Flags().String("save-query", "", "save the criteria and a result summary to this file")
}

// searchRequest is everything one search run needs besides configuration.
type searchRequest struct {
	Criteria  types.SearchCriteria
	Sources   []string
	SaveQuery string
}

// searchReport summarizes a finished run.
type searchReport struct {
	RunID    string
	Total    int
	Rendered int
	Failed   []string
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	req, err := searchRequestFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	_, err = executeSearch(cmd.Context(), cfg, req, search.NewRegistry(), cmd.OutOrStdout(), logger)
	return err
}

// searchRequestFromFlags builds criteria from an optional query file
// overlaid with any flags the user set explicitly.
func searchRequestFromFlags(cmd *cobra.Command, cfg types.Config) (searchRequest, error) {
	req := searchRequest{Sources: cfg.Search.Sources}
	req.SaveQuery, _ = cmd.Flags().GetString("save-query")

	if path, _ := cmd.Flags().GetString("query-file"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return req, err
		}
		req.Criteria = qf.Criteria
		if !cmd.Flags().Changed("source") && len(qf.Sources) > 0 {
			req.Sources = qf.Sources
		}
	}

	for _, f := range criteriaFlags {
		if cmd.Flags().Changed(f.name) {
			*f.field(&req.Criteria), _ = cmd.Flags().GetString(f.name)
		}
	}
	if cmd.Flags().Changed("limit") {
		n, _ := cmd.Flags().GetInt("limit")
		req.Criteria.Limit = &n
	}
	return req, nil
}

// executeSearch runs one search end to end: select sources, aggregate,
// post-process, render, then record the run where configured.
func executeSearch(ctx context.Context, cfg types.Config, req searchRequest, registry *search.Registry, w io.Writer, logger logrus.FieldLogger) (searchReport, error) {
	report := searchReport{RunID: uuid.NewString()}
	log := logger.WithField("run_id", report.RunID)

	sources, warnings := registry.Select(req.Sources, cfg.HTTP)
	for _, msg := range warnings {
		log.Warn(msg)
	}
	if len(sources) == 0 {
		return report, errNoSources
	}

	var rec *metrics.Recorder
	if cfg.Metrics.File != "" {
		rec = metrics.NewRecorder()
	}

	if cfg.Search.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Deadline)
		defer cancel()
	}

	started := time.Now()
	agg := search.NewAggregator(sources, search.WithLogger(log), search.WithMetrics(rec))
	out := agg.Search(ctx, req.Criteria)

	p, diags := pipeline.Build(req.Criteria)
	for _, d := range diags {
		entry := log.WithField("severity", d.Severity.String())
		if d.Severity == pipeline.SeverityWarning {
			entry.Warn(d.Message)
		} else {
			entry.Info(d.Message)
		}
	}
	listings := p.WithMetrics(rec).Execute(out.Listings)

	emitter, ok := emit.New(cfg.Output.Format)
	if !ok {
		log.WithField("format", cfg.Output.Format).Warn("unrecognized output format, using text")
	}
	if err := emitter.Emit(w, listings); err != nil {
		return report, fmt.Errorf("writing results: %w", err)
	}

	report.Total = len(out.Listings)
	report.Rendered = len(listings)
	for _, f := range out.Failures {
		report.Failed = append(report.Failed, f.Source)
	}

	log.WithFields(logrus.Fields{
		"sources":  len(sources),
		"failed":   len(out.Failures),
		"listings": report.Total,
		"rendered": report.Rendered,
		"elapsed":  time.Since(started).Round(time.Millisecond).String(),
	}).Info("search complete")

	if cfg.Archive.DSN != "" {
		if err := archiveRun(ctx, cfg.Archive.DSN, store.Run{
			ID:            report.RunID,
			StartedAt:     started,
			Criteria:      req.Criteria,
			Sources:       agg.Sources(),
			FailedSources: report.Failed,
			Total:         report.Total,
			Listings:      listings,
		}); err != nil {
			return report, err
		}
		log.WithField("archive", cfg.Archive.DSN).Debug("run archived")
	}

	if req.SaveQuery != "" {
		qf := search.NewQueryFile(report.RunID, req.Criteria, agg.Sources(), out, report.Rendered)
		if err := search.WriteQueryFile(req.SaveQuery, qf); err != nil {
			return report, err
		}
		log.WithField("path", req.SaveQuery).Info("query saved")
	}

	if err := rec.WriteTextfile(cfg.Metrics.File); err != nil {
		return report, err
	}
	return report, nil
}

func archiveRun(ctx context.Context, dsn string, run store.Run) error {
	// The fan-out deadline must not cut the archive write short.
	ctx = context.WithoutCancel(ctx)

	archive, err := store.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer archive.Close()

	if err := archive.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}
	return nil
}
