package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nanoboard"

// Metrics holds all Prometheus metrics for the gateway. The Observe/Record
// helpers are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Sandbox metrics
	SandboxDeniedTotal *prometheus.CounterVec

	// Auth metrics
	LoginAttemptsTotal *prometheus.CounterVec
	ThrottledKeys      prometheus.Gauge

	// Store metrics
	StoreMutationsTotal *prometheus.CounterVec

	// Watcher metrics
	WatchEventsTotal *prometheus.CounterVec
	WatchClients     prometheus.Gauge
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		SandboxDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sandbox_denied_total",
				Help:      "Requests rejected because a path or id escaped its root",
			},
			[]string{"operation"},
		),

		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ThrottledKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "login_tracked_clients",
				Help:      "Client keys currently tracked by the login throttle",
			},
		),

		StoreMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_mutations_total",
				Help:      "JSON store read-modify-write cycles",
			},
			[]string{"store", "result"},
		),

		WatchEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watch_events_total",
				Help:      "Workspace change events broadcast to clients",
			},
			[]string{"event"},
		),
		WatchClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watch_clients",
				Help:      "Connected workspace watch clients",
			},
		),
	}

	m.registerMetrics()

	return m
}

func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.SandboxDeniedTotal,
		m.LoginAttemptsTotal,
		m.ThrottledKeys,
		m.StoreMutationsTotal,
		m.WatchEventsTotal,
		m.WatchClients,
	)
}

// ObserveRequest records one finished API request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordDenied(operation string) {
	if m == nil {
		return
	}
	m.SandboxDeniedTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetTrackedClients(n int) {
	if m == nil {
		return
	}
	m.ThrottledKeys.Set(float64(n))
}

func (m *Metrics) RecordStoreMutation(store string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreMutationsTotal.WithLabelValues(store, result).Inc()
}

func (m *Metrics) RecordWatchEvent(event string) {
	if m == nil {
		return
	}
	m.WatchEventsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) AddWatchClients(delta int) {
	if m == nil {
		return
	}
	m.WatchClients.Add(float64(delta))
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
