package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reconcile actions recorded in media_reconcile_total.
const (
	ActionNoop   = "noop"
	ActionUpload = "upload"
	ActionRemove = "remove"

	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics owns a private registry so tests and multiple app instances never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	HTTPInFlight   prometheus.Gauge
	MediaReconcile *prometheus.CounterVec
	MediaOrphans   *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
		MediaReconcile: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_reconcile_total",
				Help: "Media reconcile operations by owner kind, action and result",
			},
			[]string{"kind", "action", "result"},
		),
		MediaOrphans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_orphaned_objects_total",
				Help: "Remote objects written whose local media slot could not be stored",
			},
			[]string{"kind"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPInFlight,
		m.MediaReconcile,
		m.MediaOrphans,
		m.BreakerState,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReconcile is nil-safe so callers without metrics need no guard.
func (m *Metrics) ObserveReconcile(kind, action, result string) {
	if m == nil {
		return
	}
	m.MediaReconcile.WithLabelValues(kind, action, result).Inc()
}

func (m *Metrics) ObserveOrphan(kind string) {
	if m == nil {
		return
	}
	m.MediaOrphans.WithLabelValues(kind).Inc()
}
