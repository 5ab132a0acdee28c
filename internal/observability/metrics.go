// Package observability holds the Prometheus collectors of the dashboard.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accel_dashboard"

// Dataset processing outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Requests made to the health API, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	upstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of health API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	datasetsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datasets_processed_total",
		Help:      "Datasets run through normalization, by outcome.",
	}, []string{"outcome"})
	normalizedSamples = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "normalized_samples",
		Help:      "Number of samples in each normalized series.",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
	})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamLatency, datasetsProcessed, normalizedSamples, httpRequests)
}

// RecordUpstream records one health API call
func RecordUpstream(endpoint, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	upstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordDataset records the outcome of normalizing one dataset
func RecordDataset(outcome string, samples int) {
	datasetsProcessed.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		normalizedSamples.Observe(float64(samples))
	}
}

// RecordHTTP records one served request. route is the matched pattern, not the raw path.
func RecordHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
