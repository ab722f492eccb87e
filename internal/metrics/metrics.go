package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels, one per failure kind plus success.
const (
	OutcomeOK         = "ok"
	OutcomeAPI        = "api_error"
	OutcomeTransport  = "transport_error"
	OutcomeDecode     = "decode_error"
	OutcomeValidation = "validation_error"
)

type Metrics struct {
	SessionsCreated prometheus.Counter

	requestsTotal *prometheus.CounterVec
	latencyMs     *prometheus.HistogramVec
	admissionMs   prometheus.Histogram
}

// New creates client metrics and registers them on reg. A nil reg keeps the
// collectors unregistered, they still count.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brave_sessions_created_total",
			Help: "Number of pooled HTTP sessions constructed by the client.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brave_requests_total",
			Help: "Total number of search API calls by endpoint, outcome and HTTP status.",
		}, []string{"endpoint", "outcome", "status"}),
		latencyMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brave_request_latency_ms",
			Help:    "Latency of the HTTP phase in milliseconds.",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 20000},
		}, []string{"endpoint"}),
		admissionMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brave_admission_wait_ms",
			Help:    "Time spent waiting for a rate limiter token in milliseconds.",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2000, 5000},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.SessionsCreated, m.requestsTotal, m.latencyMs, m.admissionMs)
	}
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(endpoint, outcome string, status int, dur time.Duration) {
	s := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(endpoint, outcome, s).Inc()
	if status != 0 {
		m.latencyMs.WithLabelValues(endpoint).Observe(float64(dur.Milliseconds()))
	}
}

func (m *Metrics) ObserveAdmission(wait time.Duration) {
	m.admissionMs.Observe(float64(wait.Milliseconds()))
}

// Requests returns the counter for a label combination, for inspection.
func (m *Metrics) Requests(endpoint, outcome string, status int) prometheus.Counter {
	return m.requestsTotal.WithLabelValues(endpoint, outcome, strconv.Itoa(status))
}
