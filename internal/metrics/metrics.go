// Package metrics provides Prometheus metrics for Mission Control.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	MutationsTotal  *prometheus.CounterVec
	PersistErrors   *prometheus.CounterVec
	Records         *prometheus.GaugeVec
	ErrorsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_http_requests_total",
				Help: "Total HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mission_control_http_request_duration_seconds",
				Help:    "HTTP request duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_mutations_total",
				Help: "Records changed by kind and operation.",
			},
			[]string{"kind", "op"},
		),
		PersistErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_persist_errors_total",
				Help: "Failed collection saves by kind.",
			},
			[]string{"kind"},
		),
		Records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mission_control_records",
				Help: "Records currently held per kind.",
			},
			[]string{"kind"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_control_errors_total",
				Help: "Total errors by module and type.",
			},
			[]string{"module", "type"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.MutationsTotal)
	reg.MustRegister(m.PersistErrors)
	reg.MustRegister(m.Records)
	reg.MustRegister(m.ErrorsTotal)
	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry (for testing).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordRequest counts one HTTP request and its duration.
func (m *Metrics) RecordRequest(route, method, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(module, errType string) {
	m.ErrorsTotal.WithLabelValues(module, errType).Inc()
}

// ObserveMutation implements board.Observer.
func (m *Metrics) ObserveMutation(kind, op string, n int) {
	m.MutationsTotal.WithLabelValues(kind, op).Add(float64(n))
}

// ObservePersistError implements board.Observer.
func (m *Metrics) ObservePersistError(kind string) {
	m.PersistErrors.WithLabelValues(kind).Inc()
}

// ObserveSize implements board.Observer.
func (m *Metrics) ObserveSize(kind string, n int) {
	m.Records.WithLabelValues(kind).Set(float64(n))
}
