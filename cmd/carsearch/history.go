// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/carsearch/internal/emit"
	"github.com/pdiddy/carsearch/internal/store"
	"github.com/pdiddy/carsearch/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived search runs",
	Long: `History reads the run archive written by 'carsearch search --archive'.
Without --run it lists recent runs; with --run it prints the listings that
run rendered, in the configured output format.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("archive", "", "archive to read: sqlite:<path> or postgres://... (default archive.dsn)")
	historyCmd.Flags().Int("limit", 20, "number of runs to list, 0 for all")
	historyCmd.Flags().String("run", "", "print the listings of this run")
	historyCmd.Flags().String("format", "", "output format for --run (default output.format)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	dsn := cfg.Archive.DSN
	if cmd.Flags().Changed("archive") {
		dsn, _ = cmd.Flags().GetString("archive")
	}
	if dsn == "" {
		return fmt.Errorf("no archive configured: pass --archive or set archive.dsn")
	}

	ctx := cmd.Context()

	archive, err := store.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer archive.Close()

	w := cmd.OutOrStdout()

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			f, _ := cmd.Flags().GetString("format")
			format = types.OutputFormat(f)
		}
		emitter, ok := emit.New(format)
		if !ok {
			logger.WithField("format", format).Warn("unrecognized output format, using text")
		}
		listings, err := archive.Listings(ctx, runID)
		if err != nil {
			return err
		}
		return emitter.Emit(w, listings)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := archive.Runs(ctx, limit)
	if err != nil {
		return err
	}
	return formatHistory(w, runs)
}

func formatHistory(w io.Writer, runs []store.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs archived.")
		return err
	}

	fmt.Fprintf(w, "%-36s  %-16s  %-30s  %8s  %8s  %s\n",
		"Run", "When", "Criteria", "Total", "Shown", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		criteria := describeCriteria(r.Criteria)
		if len(criteria) > 30 {
			criteria = criteria[:27] + "..."
		}
		failed := strings.Join(r.FailedSources, ",")
		if failed == "" {
			failed = "-"
		}
		fmt.Fprintf(w, "%-36s  %-16s  %-30s  %8s  %8s  %s\n",
			r.ID, humanize.Time(r.StartedAt), criteria,
			humanize.Comma(int64(r.Total)), humanize.Comma(int64(r.Stored)), failed)
	}

	_, err := fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return err
}

// describeCriteria renders the set criteria as "make=Skoda max_price=15000".
func describeCriteria(c types.SearchCriteria) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("make", c.Make)
	add("model", c.Model)
	add("min_year", c.MinYear)
	add("max_year", c.MaxYear)
	add("min_mileage", c.MinMileage)
	add("max_mileage", c.MaxMileage)
	add("min_price", c.MinPrice)
	add("max_price", c.MaxPrice)
	add("sort_by", c.SortBy)
	add("sort_order", c.SortOrder)
	if c.Limit != nil {
		parts = append(parts, fmt.Sprintf("limit=%d", *c.Limit))
	}
	if len(parts) == 0 {
		return "(any)"
	}
	return strings.Join(parts, " ")
}
