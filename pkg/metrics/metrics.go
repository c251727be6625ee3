// Package metrics exposes Prometheus collectors for HTTP traffic and domain operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/middleware"
)

// Recorder counts domain operation outcomes. Domain systems depend on this
// interface rather than on Prometheus directly.
type Recorder interface {
	// Observe records one operation of the named domain with its outcome.
	Observe(domain, operation string, err error)
}

// Metrics owns a dedicated Prometheus registry and the service collectors.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// New creates and registers the service collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code.",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Domain operations by domain, operation, and outcome.",
			},
			[]string{"domain", "operation", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.operations,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests and observes their latency.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := middleware.NewStatusRecorder(w)
			next.ServeHTTP(rec, r)

			m.requests.WithLabelValues(r.Method, strconv.Itoa(rec.Status)).Inc()
			m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

// Observe records a domain operation. The outcome label is "ok" or the fault kind.
func (m *Metrics) Observe(domain, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = faults.KindName(err)
	}
	m.operations.WithLabelValues(domain, operation, outcome).Inc()
}

type discard struct{}

func (discard) Observe(string, string, error) {}

// Discard is a Recorder that drops every observation.
var Discard Recorder = discard{}
