package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"audio_conversion/entity"
)

const namespace = "audio_conversion"

// Metrics is nil-safe: every Observe method is a no-op on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	conversionsTotal    *prometheus.CounterVec
	conversionDuration  *prometheus.HistogramVec
	uploadsTotal        *prometheus.CounterVec
	uploadDuration      *prometheus.HistogramVec

	otel *otelInstruments
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		conversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Conversions by delivery mode, outcome and failure kind.",
			},
			[]string{"delivery", "outcome", "kind"},
		),
		conversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "End-to-end conversion duration in seconds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"delivery", "outcome"},
		),
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Cloud uploads by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		uploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_duration_seconds",
				Help:      "Cloud upload duration in seconds, including permission and link steps.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.conversionsTotal,
		m.conversionDuration,
		m.uploadsTotal,
		m.uploadDuration,
	)

	// The OpenTelemetry mirror is optional; prometheus stays authoritative.
	if otelInst, err := newOTelInstruments(); err == nil {
		m.otel = otelInst
	}

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

// ObserveConversion records a finished conversion; err == nil means success.
func (m *Metrics) ObserveConversion(delivery entity.Delivery, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome, kind := outcomeOf(err)
	m.conversionsTotal.WithLabelValues(string(delivery), outcome, kind).Inc()
	m.conversionDuration.WithLabelValues(string(delivery), outcome).Observe(duration.Seconds())
	m.otel.recordConversion(string(delivery), outcome, duration.Seconds())
}

func (m *Metrics) ObserveUpload(backend string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome, _ := outcomeOf(err)
	m.uploadsTotal.WithLabelValues(backend, outcome).Inc()
	m.uploadDuration.WithLabelValues(backend).Observe(duration.Seconds())
	m.otel.recordUpload(backend, outcome, duration.Seconds())
}

func outcomeOf(err error) (string, string) {
	if err == nil {
		return "success", ""
	}
	return "failure", string(entity.KindOf(err))
}
