// Package server exposes an optional HTTP endpoint with Prometheus metrics
// about the running viewer. It is only started when a listen address is
// configured.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors tracked by the viewer. Each
// instance carries its own registry so repeated construction does not
// trip duplicate registration.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	imagesDecoded  *prometheus.CounterVec
	decodeDuration prometheus.Histogram
	decodeFailures prometheus.Counter
	imagesViewed   prometheus.Counter

	activeRequests prometheus.Gauge
	requestsTotal  prometheus.Counter
}

// NewMetrics creates the collectors and the HTTP handler serving them.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		imagesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pixview_images_decoded_total",
			Help: "Number of successfully decoded images by format.",
		}, []string{"format"}),
		decodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixview_decode_duration_seconds",
			Help:    "Time spent decoding a single image.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		decodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pixview_decode_failures_total",
			Help: "Number of images that failed to decode.",
		}),
		imagesViewed: factory.NewCounter(prometheus.CounterOpts{
			Name: "pixview_images_viewed_total",
			Help: "Number of images shown to the user, including revisits.",
		}),
		activeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pixview_active_requests",
			Help: "Number of HTTP requests currently being served.",
		}),
		requestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pixview_requests_total",
			Help: "Total number of HTTP requests served.",
		}),
	}

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// ObserveDecode records a successful decode of an image in the given format.
func (m *Metrics) ObserveDecode(format string, d time.Duration) {
	m.imagesDecoded.WithLabelValues(format).Inc()
	m.decodeDuration.Observe(d.Seconds())
}

// ObserveDecodeFailure records a decode failure.
func (m *Metrics) ObserveDecodeFailure() {
	m.decodeFailures.Inc()
}

// ObserveView records that an image was displayed.
func (m *Metrics) ObserveView() {
	m.imagesViewed.Inc()
}

// IncrementActiveRequests increments the in-flight HTTP request gauge.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
	m.requestsTotal.Inc()
}

// DecrementActiveRequests decrements the in-flight HTTP request gauge.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// WritePrometheus serves the metrics in Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
