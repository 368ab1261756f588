// Package metrics provides Prometheus metrics for finscreen.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's collectors on a private registry.
// All methods are safe to call on a nil *Manager.
type Manager struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64

	sourceOutcomes *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	verdicts       *prometheus.CounterVec
	screenDuration prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// Option configures a Manager
type Option func(*Manager)

// WithNamespace sets the metric namespace (default "finscreen")
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		m.namespace = ns
	}
}

// WithBuckets sets the histogram buckets
func WithBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.buckets = b
		}
	}
}

// NewManager creates a Manager with its own registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "finscreen",
		registry:  prometheus.NewRegistry(),
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.sourceOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "source_outcomes_total",
		Help:      "Metric source fetches by source and outcome",
	}, []string{"source", "outcome"})

	m.resolutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "resolutions_total",
		Help:      "Ratio and growth resolutions by kind and status",
	}, []string{"kind", "status"})

	m.verdicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "screen_verdicts_total",
		Help:      "Screening verdicts by status",
	}, []string{"status"})

	m.screenDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "screen_duration_seconds",
		Help:      "Duration of screening runs",
		Buckets:   m.buckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.buckets,
	}, []string{"method", "path"})

	return m
}

// SourceOutcome records one adapter fetch ("found" or "unavailable")
func (m *Manager) SourceOutcome(source, outcome string) {
	if m == nil {
		return
	}
	m.sourceOutcomes.WithLabelValues(source, outcome).Inc()
}

// Resolution records a ratio or growth resolution
func (m *Manager) Resolution(kind, status string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, status).Inc()
}

// Verdict records one screening verdict
func (m *Manager) Verdict(status string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(status).Inc()
}

// ScreenDuration observes the duration of a screening run
func (m *Manager) ScreenDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.screenDuration.Observe(d.Seconds())
}

// HTTPRequest records a served request
func (m *Manager) HTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
