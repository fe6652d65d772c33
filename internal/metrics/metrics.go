// Package metrics exposes Prometheus instrumentation for the API server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	BalanceComputations  prometheus.Counter
	SimplifiedTransfers  prometheus.Histogram
	EventPublishFailures prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "evenly_http_requests_total",
			Help: "Total number of HTTP requests by route, method, and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evenly_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		BalanceComputations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "evenly_balance_computations_total",
			Help: "Total number of group balance computations",
		}),
		SimplifiedTransfers: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "evenly_simplified_transfers",
			Help:    "Number of transfers per debt simplification",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		EventPublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "evenly_event_publish_failures_total",
			Help: "Total number of failed event publishes",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (m *Metrics) ObserveBalanceComputation(transfers int) {
	m.BalanceComputations.Inc()
	m.SimplifiedTransfers.Observe(float64(transfers))
}

func (m *Metrics) IncrementEventPublishFailures() {
	m.EventPublishFailures.Inc()
}
