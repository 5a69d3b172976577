// Package metrics exposes pipeline and panel metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "christina"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	stages       *prometheus.HistogramVec
	translations *prometheus.CounterVec
	breaker      prometheus.Gauge

	inFlight    prometheus.Gauge
	httpCounter *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by trigger source and outcome.",
		}, []string{"source", "outcome"}),
		// OCR dominates; translation is bounded by its timeout.
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation attempts by outcome.",
		}, []string{"outcome"}),
		breaker: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Translation circuit breaker state (0 closed, 1 open, 2 half-open).",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Number of panel requests being served.",
		}),
		httpCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Panel requests by status code and method.",
		}, []string{"code", "method"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Panel request latencies.",
			Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		m.runs, m.stages, m.translations, m.breaker,
		m.inFlight, m.httpCounter, m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RunFinished counts one run.
func (m *Metrics) RunFinished(source, outcome string) {
	m.runs.WithLabelValues(source, outcome).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// Translation counts one translation attempt.
func (m *Metrics) Translation(outcome string) {
	m.translations.WithLabelValues(outcome).Inc()
}

// BreakerState records the breaker state as its numeric value.
func (m *Metrics) BreakerState(state uint32) {
	m.breaker.Set(float64(state))
}

// Instrument wraps a panel handler with in-flight, latency and counter
// instrumentation.
func (m *Metrics) Instrument(h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.httpLatency,
			promhttp.InstrumentHandlerCounter(m.httpCounter, h),
		),
	)
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
