package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meteo"

// Metrics holds the Prometheus collectors for the reduction pipeline, the
// data sources, MQTT ingest and the HTTP API. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Reductions        *prometheus.CounterVec   // labels: period, outcome={ok,rejected}
	PointsIn          *prometheus.HistogramVec // labels: period
	PointsOut         *prometheus.HistogramVec // labels: period
	ReductionDuration *prometheus.HistogramVec // labels: period

	SourceFetches       *prometheus.CounterVec   // labels: source, outcome={ok,error}
	SourceFetchDuration *prometheus.HistogramVec // labels: source

	IngestMessages *prometheus.CounterVec // labels: outcome={stored,invalid,failed}
	MQTTConnected  prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // labels: method, route, status
}

var pointBuckets = []float64{10, 50, 100, 144, 168, 288, 360, 720, 1440, 5000, 20000, 100000}

// NewMetrics creates all collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reductions_total",
			Help:      "Series reductions by period and outcome.",
		}, []string{"period", "outcome"}),
		PointsIn: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reduction_points_in",
			Help:      "Raw readings handed to the reduction pipeline.",
			Buckets:   pointBuckets,
		}, []string{"period"}),
		PointsOut: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reduction_points_out",
			Help:      "Readings left after windowing and sampling.",
			Buckets:   pointBuckets,
		}, []string{"period"}),
		ReductionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reduction_duration_seconds",
			Help:      "Duration of a window filter plus sampler run.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"period"}),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Raw reading fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of raw reading fetches.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		IngestMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_messages_total",
			Help:      "MQTT measurement messages by outcome.",
		}, []string{"outcome"}),
		MQTTConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "1 while the MQTT subscriber is connected, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.Reductions,
		m.PointsIn,
		m.PointsOut,
		m.ReductionDuration,
		m.SourceFetches,
		m.SourceFetchDuration,
		m.IngestMessages,
		m.MQTTConnected,
		m.HTTPRequests,
	)

	return m
}

func (m *Metrics) ObserveReduction(period string, in, out int, d time.Duration) {
	if m == nil {
		return
	}
	m.Reductions.WithLabelValues(period, "ok").Inc()
	m.PointsIn.WithLabelValues(period).Observe(float64(in))
	m.PointsOut.WithLabelValues(period).Observe(float64(out))
	m.ReductionDuration.WithLabelValues(period).Observe(d.Seconds())
}

func (m *Metrics) ReductionRejected(period string) {
	if m == nil {
		return
	}
	m.Reductions.WithLabelValues(period, "rejected").Inc()
}

func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
	m.SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) IngestOutcome(outcome string) {
	if m == nil {
		return
	}
	m.IngestMessages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetMQTTConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.MQTTConnected.Set(1)
		return
	}
	m.MQTTConnected.Set(0)
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
