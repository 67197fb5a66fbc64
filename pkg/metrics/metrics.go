package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/facetlabs/facet/internal/common/config"
)

// Metrics is the Prometheus registry for the service.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	commandCnt  *prometheus.CounterVec
	commandDur  *prometheus.HistogramVec
	rateLimited prometheus.Counter
	sessions    prometheus.Gauge
}

// New builds the registry with process, Go, HTTP and command metrics.
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	r.MustRegister(httpReqCnt, httpDur)

	commandCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "commands_total"}, []string{"role", "outcome"})
	commandDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "command_duration_seconds", Buckets: cfg.Buckets}, []string{"role"})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "rate_limited_total"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "active_sessions"})
	r.MustRegister(commandCnt, commandDur, rateLimited, sessions)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		commandCnt:  commandCnt,
		commandDur:  commandDur,
		rateLimited: rateLimited,
		sessions:    sessions,
	}
}

// ObserveCommand records one processed chat command.
func (m *Metrics) ObserveCommand(role, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.commandCnt.WithLabelValues(role, outcome).Inc()
	m.commandDur.WithLabelValues(role).Observe(dur.Seconds())
}

// ObserveRateLimited records a throttled request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// SetActiveSessions publishes the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// GinMiddleware instruments HTTP requests.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// GinHandler serves the /metrics endpoint.
func (m *Metrics) GinHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
