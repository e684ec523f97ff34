// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps a private registry so tests can build as many as they
// like without tripping over duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	StudentsCreated  prometheus.Counter
	StudentsDeleted  prometheus.Counter
	CoffeeIncrements prometheus.Counter
}

// New registers the HTTP and roster collectors plus the Go runtime ones.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		StudentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "students_created_total",
			Help: "Students added to the roster",
		}),
		StudentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "students_deleted_total",
			Help: "Students removed from the roster",
		}),
		CoffeeIncrements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coffee_increments_total",
			Help: "Coffees recorded across all students",
		}),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.StudentsCreated,
		m.StudentsDeleted,
		m.CoffeeIncrements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveHTTPRequest records one finished request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.requestTotal.WithLabelValues(method, route, statusLabel).Inc()
	m.requestDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
