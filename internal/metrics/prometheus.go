// Package metrics exposes scan and tool metrics in Prometheus format.
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

const (
	namespace = "osintscan"

	subsystemScan = "scan"
	subsystemTool = "tool"
	subsystemAPI  = "api"
)

// PrometheusMetrics holds all collectors on a private registry. A nil
// *PrometheusMetrics is valid and records nothing.
type PrometheusMetrics struct {
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	activeScans  prometheus.Gauge

	toolDuration *prometheus.HistogramVec
	toolFailures *prometheus.CounterVec

	httpRequests *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{registry: prometheus.NewRegistry()}

	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Scans that reached a terminal status",
		},
		[]string{"status"},
	)
	pm.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystemScan,
		Name:      "duration_seconds",
		Help:      "Wall time from submission to terminal status",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	pm.activeScans = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystemScan,
		Name:      "active",
		Help:      "Scans currently executing",
	})
	pm.toolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemTool,
			Name:      "duration_seconds",
			Help:      "Duration of individual tool runs",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"tool"},
	)
	pm.toolFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTool,
			Name:      "failures_total",
			Help:      "Tool runs that ended in failure",
		},
		[]string{"tool"},
	)
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	pm.registry.MustRegister(
		pm.scansTotal, pm.scanDuration, pm.activeScans,
		pm.toolDuration, pm.toolFailures, pm.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return pm
}

// ScanStarted marks a scan as executing.
func (pm *PrometheusMetrics) ScanStarted() {
	if pm == nil {
		return
	}
	pm.activeScans.Inc()
}

// ScanFinished records the terminal status of a scan that was started.
func (pm *PrometheusMetrics) ScanFinished(status string, duration time.Duration) {
	if pm == nil {
		return
	}
	pm.activeScans.Dec()
	pm.scansTotal.WithLabelValues(status).Inc()
	pm.scanDuration.Observe(duration.Seconds())
}

// ObserveTool satisfies engine.Recorder.
func (pm *PrometheusMetrics) ObserveTool(tool string, duration time.Duration, err error) {
	if pm == nil {
		return
	}
	pm.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
	if err != nil {
		pm.toolFailures.WithLabelValues(tool).Inc()
	}
}

// GinMiddleware counts requests by matched route.
func (pm *PrometheusMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if pm == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		pm.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry.
func (pm *PrometheusMetrics) Handler() http.Handler {
	if pm == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}
