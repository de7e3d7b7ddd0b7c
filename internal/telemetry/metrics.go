// Package telemetry exposes Prometheus instrumentation for the retrieval
// pipeline. All record helpers are nil-safe so callers can run without a
// registry in tests.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	searchesTotal    *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
	documentsScanned prometheus.Counter
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	cacheRequests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsearch",
			Name:      "searches_total",
			Help:      "Total retrieval requests by kind and outcome",
		}, []string{"kind", "status"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lexsearch",
			Name:      "search_duration_seconds",
			Help:      "Retrieval request duration",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		documentsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lexsearch",
			Name:      "documents_scanned_total",
			Help:      "Total corpus documents opened for scoring",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsearch",
			Name:      "provider_calls_total",
			Help:      "Completion provider calls by purpose and outcome",
		}, []string{"purpose", "status"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lexsearch",
			Name:      "provider_call_duration_seconds",
			Help:      "Completion provider call duration",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"purpose"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexsearch",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by namespace and outcome",
		}, []string{"namespace", "outcome"}),
	}
	m.registry.MustRegister(
		m.searchesTotal,
		m.searchDuration,
		m.documentsScanned,
		m.providerCalls,
		m.providerDuration,
		m.cacheRequests,
	)
	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) RecordSearch(kind, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(kind, status).Inc()
	m.searchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordScanned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.documentsScanned.Add(float64(n))
}

func (m *Metrics) RecordProviderCall(purpose, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(purpose, status).Inc()
	m.providerDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordCache(namespace string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheRequests.WithLabelValues(namespace, outcome).Inc()
}
