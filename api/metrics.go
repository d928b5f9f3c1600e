package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a dedicated registry so servers built in tests do not
// collide on registration
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fitDuration     prometheus.Histogram
	modelsEvaluated prometheus.Histogram
	fitFailures     prometheus.Counter
	predictFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "forecast",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "forecast",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		fitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "forecast",
				Subsystem: "model",
				Name:      "fit_duration_seconds",
				Help:      "Time spent searching for and fitting the forecast model.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		modelsEvaluated: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "forecast",
				Subsystem: "model",
				Name:      "models_evaluated",
				Help:      "Number of candidate models fit per forecast.",
				Buckets:   prometheus.LinearBuckets(5, 10, 10),
			},
		),
		fitFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "forecast",
				Subsystem: "model",
				Name:      "fit_failures_total",
				Help:      "Total number of forecasts whose model search failed.",
			},
		),
		predictFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "forecast",
				Subsystem: "model",
				Name:      "predict_failures_total",
				Help:      "Total number of forecasts that failed after a successful fit.",
			},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.fitDuration,
		m.modelsEvaluated,
		m.fitFailures,
		m.predictFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeFit(d time.Duration, models int, err error) {
	if err != nil {
		m.fitFailures.Inc()
		return
	}
	m.fitDuration.Observe(d.Seconds())
	m.modelsEvaluated.Observe(float64(models))
}

func (m *Metrics) observePredict(err error) {
	if err != nil {
		m.predictFailures.Inc()
	}
}

// middleware counts every request by its route template, or "unmatched" for unknown paths
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
