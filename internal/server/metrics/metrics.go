// Package metrics defines the Prometheus metrics of the CodePulse API.
//
// Metric naming follows Prometheus conventions:
//   - codepulse_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several servers (and tests) can coexist in
// one process.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route template and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds is a histogram of handler latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// AuthOutcomesTotal counts login attempts and route guard decisions.
	AuthOutcomesTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codepulse_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codepulse_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codepulse_auth_outcomes_total",
				Help: "Total authentication and authorization decisions by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.AuthOutcomesTotal,
	)
	return m
}

// RecordRequest records one finished HTTP request. route is the matched
// template, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordAuth counts an outcome such as "login_ok" or "forbidden".
func (m *Metrics) RecordAuth(outcome string) {
	m.AuthOutcomesTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
