package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks proxy outcomes.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	backend    *prometheus.CounterVec
	backendDur prometheus.Histogram
}

// NewMetrics registers proxy metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsadmin",
		Subsystem: "proxy",
		Name:      "requests_total",
		Help:      "Import proxy requests by outcome",
	}, []string{"outcome"})
	m.backend = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsadmin",
		Subsystem: "proxy",
		Name:      "backend_responses_total",
		Help:      "Backend import responses relayed, by status code",
	}, []string{"code"})
	m.backendDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventsadmin",
		Subsystem: "proxy",
		Name:      "backend_duration_seconds",
		Help:      "Time spent waiting on the backend import call",
		Buckets:   prometheus.DefBuckets,
	})
	m.registry.MustRegister(m.requests, m.backend, m.backendDur)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeFailure(e *ProxyError) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(e.kindLabel()).Inc()
}

func (m *Metrics) observeRelay(status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues("relayed").Inc()
	m.backend.WithLabelValues(strconv.Itoa(status)).Inc()
	m.backendDur.Observe(elapsed.Seconds())
}
