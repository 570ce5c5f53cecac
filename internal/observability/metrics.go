package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Aggregation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration   *prometheus.HistogramVec
	Aggregations    *prometheus.CounterVec
	UnlockedCourses prometheus.Histogram
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_fetch_duration_seconds",
				Help:    "Duration of portal record fetches",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		Aggregations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_aggregations_total",
				Help: "Total number of aggregation runs",
			},
			[]string{"outcome"},
		),
		UnlockedCourses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_unlocked_courses",
				Help:    "Number of unlocked courses per aggregation",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "endpoint"},
		),
	}

	m.registry.MustRegister(
		m.FetchDuration,
		m.Aggregations,
		m.UnlockedCourses,
		m.RequestCounter,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records how long fetching one record source took.
func (m *Metrics) ObserveFetch(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordAggregation counts a finished aggregation run.
func (m *Metrics) RecordAggregation(outcome string, unlocked int) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.UnlockedCourses.Observe(float64(unlocked))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
