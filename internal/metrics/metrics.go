// Package metrics exposes Prometheus metrics for reconciliation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the reconciliation metric collectors.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	licensesCreated  *prometheus.CounterVec
	licensesUpdated  *prometheus.CounterVec
	licensesExpired  *prometheus.CounterVec
	recordsSkipped   *prometheus.CounterVec
	needsReviewGauge prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "licman_reconcile_runs_total",
			Help: "Reconciliation runs by vendor and outcome.",
		}, []string{"vendor", "status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "licman_reconcile_run_duration_seconds",
			Help:    "Duration of per-vendor reconciliation runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		licensesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "licman_licenses_created_total",
			Help: "Licenses created by reconciliation, per vendor.",
		}, []string{"vendor"}),
		licensesUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "licman_licenses_updated_total",
			Help: "Licenses materially updated by reconciliation, per vendor.",
		}, []string{"vendor"}),
		licensesExpired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "licman_licenses_expired_total",
			Help: "Licenses expired after disappearing upstream, per vendor.",
		}, []string{"vendor"}),
		recordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "licman_records_skipped_total",
			Help: "Malformed or duplicate upstream records skipped, per vendor.",
		}, []string{"vendor"}),
		needsReviewGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "licman_licenses_needing_review",
			Help: "Licenses currently awaiting a reviewer decision.",
		}),
	}
}

// ObserveRun records the outcome of one vendor reconciliation run.
func (m *Metrics) ObserveRun(vendor, status string, created, updated, expired, skipped int, duration time.Duration) {
	m.runsTotal.WithLabelValues(vendor, status).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.licensesCreated.WithLabelValues(vendor).Add(float64(created))
	m.licensesUpdated.WithLabelValues(vendor).Add(float64(updated))
	m.licensesExpired.WithLabelValues(vendor).Add(float64(expired))
	m.recordsSkipped.WithLabelValues(vendor).Add(float64(skipped))
}

// SetNeedsReview updates the needs-review gauge.
func (m *Metrics) SetNeedsReview(n int) {
	m.needsReviewGauge.Set(float64(n))
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
