// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vizmetrics exports viewer activity as Prometheus metrics:
// fetch outcomes per endpoint, reconciliation modes, node status
// transitions, and the current node count per status.
package vizmetrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bureau-foundation/clusterview/lib/nodestatus"
	"github.com/bureau-foundation/clusterview/lib/reconcile"
	"github.com/bureau-foundation/clusterview/lib/source"
)

// Fetch result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHTTP  = "http_error"
)

// Metrics holds the viewer's collectors.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	reconciles    *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	nodes         *prometheus.GaugeVec
	generation    prometheus.Gauge
}

// New registers the collectors with registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clusterview_fetches_total",
				Help: "Fetches from the state source, labeled by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clusterview_fetch_duration_seconds",
				Help:    "Duration of fetches from the state source",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		reconciles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clusterview_reconciles_total",
				Help: "Reconciliation outcomes, labeled by mode",
			},
			[]string{"mode"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clusterview_status_transitions_total",
				Help: "Node status transitions applied in place, labeled by the new status",
			},
			[]string{"to"},
		),
		nodes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clusterview_nodes",
				Help: "Nodes in the current diagram, labeled by derived status",
			},
			[]string{"status"},
		),
		generation: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clusterview_redraw_generation",
			Help: "Generation of the most recent redraw pipeline",
		}),
	}
}

// ObserveFetch records one fetch. err is the error the source returned.
func (metrics *Metrics) ObserveFetch(endpoint string, elapsed time.Duration, err error) {
	metrics.fetchDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	metrics.fetches.WithLabelValues(endpoint, fetchResult(err)).Inc()
}

func fetchResult(err error) string {
	if err == nil {
		return ResultOK
	}
	var fetchErr *source.FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		return ResultHTTP
	}
	return ResultError
}

// ObserveResult records a reconciliation outcome. Calls that did
// nothing are not counted.
func (metrics *Metrics) ObserveResult(result reconcile.Result) {
	if result.Mode != reconcile.ModeNone {
		metrics.reconciles.WithLabelValues(result.Mode.String()).Inc()
	}
	for _, change := range result.Changes {
		metrics.transitions.WithLabelValues(string(change.To)).Inc()
	}
	metrics.generation.Set(float64(result.Generation))
}

// SetNodeCounts replaces the per-status node gauge. Statuses missing
// from counts are set to zero so stale series do not linger.
func (metrics *Metrics) SetNodeCounts(counts map[nodestatus.Status]int) {
	for _, status := range nodestatus.All {
		metrics.nodes.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
