package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry for the API
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submitted       prometheus.Counter
	deleted         prometheus.Counter
	storeFailures   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestbook_messages_submitted_total",
			Help: "Guest messages accepted",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestbook_messages_deleted_total",
			Help: "Guest messages removed by moderation",
		}),
		storeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guestbook_store_failures_total",
				Help: "Message store operations that returned an error",
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.submitted,
		m.deleted,
		m.storeFailures,
	)

	return m
}

// MessageSubmitted counts an accepted guest message
func (m *Metrics) MessageSubmitted() {
	m.submitted.Inc()
}

// MessagesDeleted counts removed messages
func (m *Metrics) MessagesDeleted(n int) {
	if n > 0 {
		m.deleted.Add(float64(n))
	}
}

// StoreFailure counts a failed store operation
func (m *Metrics) StoreFailure(operation string) {
	m.storeFailures.WithLabelValues(operation).Inc()
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
