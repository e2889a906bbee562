// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline post-processes aggregated listings. A Pipeline is an
// ordered list of stages, each a pure transform from one listing sequence
// to a new one.
package pipeline

import (
	"fmt"

	"github.com/pdiddy/carsearch/internal/metrics"
	"github.com/pdiddy/carsearch/pkg/types"
)

// Stage transforms a listing sequence. Implementations must not modify
// the input slice; they return a new one.
type Stage interface {
	Execute(listings []types.Listing) []types.Listing
}

// named is implemented by stages that report a metrics label.
type named interface {
	Name() string
}

// Pipeline folds its input through each stage in order. A Pipeline is
// itself a Stage.
type Pipeline struct {
	stages  []Stage
	metrics *metrics.Recorder
}

// New returns a Pipeline running stages in the given order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// WithMetrics records each stage's output size on r.
func (p *Pipeline) WithMetrics(r *metrics.Recorder) *Pipeline {
	p.metrics = r
	return p
}

// Stages returns the configured stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Name returns the metrics label used when a Pipeline is nested.
func (p *Pipeline) Name() string { return "pipeline" }

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Execute runs every stage in order. With no stages the result is a copy
// of the input.
func (p *Pipeline) Execute(listings []types.Listing) []types.Listing {
	out := clone(listings)
	for _, s := range p.stages {
		out = s.Execute(out)
		p.metrics.ObserveStage(stageName(s), len(out))
	}
	return out
}

// clone copies listings into a new, non-nil slice.
func clone(listings []types.Listing) []types.Listing {
	out := make([]types.Listing, len(listings))
	copy(out, listings)
	return out
}

func stageName(s Stage) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// Severity grades a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Diagnostic reports a configuration problem that was recovered from by
// falling back to a default. The caller decides how to surface it.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func warningf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Build turns the sort and limit settings of criteria into a Pipeline.
// Sorting always runs before limiting, whatever order the user gave them
// in. Unrecognized settings fall back to defaults and are reported as
// diagnostics rather than errors.
func Build(criteria types.SearchCriteria) (*Pipeline, []Diagnostic) {
	var stages []Stage
	var diags []Diagnostic

	if criteria.SortBy != "" || criteria.SortOrder != "" {
		s, d := buildSort(criteria.SortBy, criteria.SortOrder)
		stages = append(stages, s)
		diags = append(diags, d...)
	}

	if criteria.Limit != nil {
		if n := *criteria.Limit; n < 0 {
			diags = append(diags, warningf("negative limit %d, ignoring", n))
		} else {
			stages = append(stages, Limit{N: n})
		}
	}

	return New(stages...), diags
}

func buildSort(by, order string) (Sort, []Diagnostic) {
	var diags []Diagnostic

	field := ByPrice
	if by == "" {
		diags = append(diags, Diagnostic{Severity: SeverityInfo, Message: "sort order given without a sort field, sorting by price"})
	} else if f, ok := ParseSortField(by); ok {
		field = f
	} else {
		diags = append(diags, warningf("unrecognized sort field %q, sorting by price ascending", by))
		return Sort{By: ByPrice, Order: Ascending}, diags
	}

	dir := Ascending
	if order != "" {
		if o, ok := ParseSortOrder(order); ok {
			dir = o
		} else {
			diags = append(diags, warningf("unrecognized sort order %q, using ascending", order))
		}
	}
	return Sort{By: field, Order: dir}, diags
}
