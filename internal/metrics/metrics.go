// Package metrics exposes Prometheus collectors for backend traffic and
// console sessions.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the console's collectors so tests can use a private
// registry.
type Metrics struct {
	Registry        *prometheus.Registry
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	breakerState    *prometheus.GaugeVec
	actions         *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio_admin",
			Name:      "backend_requests_total",
			Help:      "Requests sent to the portfolio API by route and status code.",
		}, []string{"route", "code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio_admin",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of portfolio API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "portfolio_admin",
			Name:      "backend_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio_admin",
			Name:      "store_actions_total",
			Help:      "Store action lifecycle transitions.",
		}, []string{"slice", "phase"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portfolio_admin",
			Name:      "active_sessions",
			Help:      "Admin sessions with a live in-memory store.",
		}),
	}
	m.Registry.MustRegister(
		m.backendRequests,
		m.backendLatency,
		m.breakerState,
		m.actions,
		m.activeSessions,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest records one backend exchange. code is 0 when no response
// arrived.
func (m *Metrics) ObserveRequest(route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.backendLatency.WithLabelValues(route).Observe(took.Seconds())
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) ObserveAction(slice, phase string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(slice, phase).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
