// Package metrics exposes the Prometheus collectors of the sync engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaderboard"

// Metrics is safe to use through a nil pointer; every recorder is a no-op then.
type Metrics struct {
	registry *prometheus.Registry

	jobRuns      *prometheus.CounterVec
	jobCoalesced *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	taunts       *prometheus.CounterVec
	sessions     prometheus.Gauge
}

// New registers the collectors on a private registry so several instances
// can coexist in one process (tests create one per case).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Refresh job executions by family and outcome.",
		}, []string{"family", "outcome"}),
		jobCoalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_coalesced_total",
			Help:      "Triggers joined to an already running job.",
		}, []string{"family"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Histogram of refresh job durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family"}),
		taunts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taunts_total",
			Help:      "Taunt requests by outcome (sent, denied, failed).",
		}, []string{"outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live per-account engines.",
		}),
	}

	m.registry.MustRegister(
		m.jobRuns,
		m.jobCoalesced,
		m.jobDuration,
		m.taunts,
		m.sessions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) JobRun(family, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(family, outcome).Inc()
	m.jobDuration.WithLabelValues(family).Observe(duration.Seconds())
}

func (m *Metrics) JobCoalesced(family string) {
	if m == nil {
		return
	}
	m.jobCoalesced.WithLabelValues(family).Inc()
}

func (m *Metrics) Taunt(outcome string) {
	if m == nil {
		return
	}
	m.taunts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
