// Package metrics exposes Prometheus counters for HTTP traffic and inventory operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	priceCommits  *prometheus.CounterVec
	pricedUnits   prometheus.Counter
	importedUnits prometheus.Counter
	transitions   *prometheus.CounterVec
	checkIns      prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		priceCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_commits_total",
			Help:      "Committed price adjustments by rule.",
		}, []string{"rule"}),
		pricedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "priced_units_total",
			Help:      "Units whose price was changed by a committed adjustment.",
		}),
		importedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_units_total",
			Help:      "Units inserted by imports.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Unit status changes by target status.",
		}, []string{"status"}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_checkins_total",
			Help:      "Event registrations checked in.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.priceCommits, m.pricedUnits,
		m.importedUnits, m.transitions, m.checkIns,
	)
	return m
}

// Handler serves the registry in the Prometheus text format. A nil *Metrics serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by their route pattern, not the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// PriceCommitted records a committed price adjustment.
func (m *Metrics) PriceCommitted(rule string, units int) {
	if m == nil {
		return
	}
	m.priceCommits.WithLabelValues(rule).Inc()
	m.pricedUnits.Add(float64(units))
}

// UnitsImported records a committed import.
func (m *Metrics) UnitsImported(n int) {
	if m == nil {
		return
	}
	m.importedUnits.Add(float64(n))
}

// StatusChanged records n units moved to status.
func (m *Metrics) StatusChanged(status string, n int) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Add(float64(n))
}

// CheckedIn records one event check-in.
func (m *Metrics) CheckedIn() {
	if m == nil {
		return
	}
	m.checkIns.Inc()
}
