// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/carsearch/pkg/types"
)

// QueryFile is the on-disk representation of a search. It stores the
// criteria so the same search can be re-run later, plus a summary of the run
// that produced it. Results are not stored: a reloaded query always hits the
// providers again.
type QueryFile struct {
	RunID    string               `yaml:"run_id"`
	Criteria types.SearchCriteria `yaml:"criteria"`
	Sources  []string             `yaml:"sources,omitempty"`
	Summary  QuerySummary         `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total         int       `yaml:"total"`
	Rendered      int       `yaml:"rendered"`
	FailedSources []string  `yaml:"failed_sources,omitempty"`
	Timestamp     time.Time `yaml:"timestamp"`
}

// NewQueryFile builds a QueryFile for one finished run. runID may be empty,
// in which case a new one is generated.
func NewQueryFile(runID string, criteria types.SearchCriteria, sources []string, out SearchOutput, rendered int) QueryFile {
	if runID == "" {
		runID = uuid.NewString()
	}
	qf := QueryFile{
		RunID:    runID,
		Criteria: criteria.Clone(),
		Sources:  sources,
		Summary: QuerySummary{
			Total:     len(out.Listings),
			Rendered:  rendered,
			Timestamp: time.Now().UTC(),
		},
	}
	for _, f := range out.Failures {
		qf.Summary.FailedSources = append(qf.Summary.FailedSources, f.Source)
	}
	return qf
}

// WriteQueryFile saves qf to path as YAML.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
