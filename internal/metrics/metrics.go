// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records per-run search metrics on a private Prometheus
// registry. carsearch is a one-shot CLI, so metrics are exported with
// WriteTextfile for the node exporter textfile collector instead of being
// served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carsearch"

// Outcome labels for source searches.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder owns the collectors for one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	searches *prometheus.CounterVec
	listings *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stage    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_total",
			Help:      "Source searches by source and outcome",
		}, []string{"source", "outcome"}),
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_listings_total",
			Help:      "Listings returned by successful source searches",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Wall time of a full paginated source search",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"source"}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_listings",
			Help:      "Listings remaining after each pipeline stage",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.searches, r.listings, r.duration, r.stage)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveSource records one finished source search.
func (r *Recorder) ObserveSource(source string, listings int, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		r.searches.WithLabelValues(source, OutcomeFailure).Inc()
		return
	}
	r.searches.WithLabelValues(source, OutcomeSuccess).Inc()
	r.listings.WithLabelValues(source).Add(float64(listings))
}

// ObserveStage records the output size of a pipeline stage.
func (r *Recorder) ObserveStage(stage string, listings int) {
	if r == nil {
		return
	}
	r.stage.WithLabelValues(stage).Set(float64(listings))
}

// WriteTextfile writes all metrics to path in Prometheus text format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
