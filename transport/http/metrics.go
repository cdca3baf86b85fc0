package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcome labels.
const (
	outcomeAccepted     = "accepted"
	outcomeNoUser       = "no_user"
	outcomeNonceExpired = "nonce_expired"
	outcomeRejected     = "rejected"
)

// Metrics holds the service's Prometheus collectors on a private registry,
// so nothing leaks into (or from) the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	loginOutcomes   *prometheus.CounterVec
	noncesIssued    prometheus.Counter
	tokenRefreshes  prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewMetrics builds the registry with the standard Go runtime collectors
// plus the service's own.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		loginOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_login_outcomes_total",
				Help: "Completed login verifications by outcome",
			},
			[]string{"outcome"},
		),
		noncesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_nonces_issued_total",
				Help: "Login challenges issued",
			},
		),
		tokenRefreshes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "questline_token_refreshes_total",
				Help: "Session windows slid forward by authorized calls",
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "questline_http_request_duration_seconds",
				Help:    "HTTP request latency by method, route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(m.loginOutcomes, m.noncesIssued, m.tokenRefreshes, m.requestDuration)
	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequests is a gin middleware timing every request by matched route.
func (m *Metrics) ObserveRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
