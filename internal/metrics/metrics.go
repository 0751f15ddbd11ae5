// Package metrics owns the Prometheus registry and the counters the server
// exports at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docnest"

// Metrics is a private registry with the HTTP and credential collectors.
// It satisfies application.CredentialMetrics and httphandler.RequestMetrics.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	revealsTotal       prometheus.Counter
	decryptFailedTotal prometheus.Counter
}

// New creates a registry with the Go and process collectors plus the
// docnest_* series.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, matched route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and matched route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		revealsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_reveals_total",
			Help:      "Stored passwords decrypted and returned to their owner.",
		}),
		decryptFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decryption_failures_total",
			Help:      "Stored ciphertexts that failed to decrypt.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.revealsTotal,
		m.decryptFailedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CredentialRevealed counts a successful password reveal.
func (m *Metrics) CredentialRevealed() {
	m.revealsTotal.Inc()
}

// DecryptionFailed counts a ciphertext that could not be opened.
func (m *Metrics) DecryptionFailed() {
	m.decryptFailedTotal.Inc()
}
