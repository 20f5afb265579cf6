package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "codesim_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// ComparisonCount counts pair comparisons by resulting level
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_comparisons_total",
			Help: "Total number of pair comparisons by similarity level",
		},
		[]string{"level"},
	)

	// ComparisonDuration measures a single pair comparison
	ComparisonDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codesim_comparison_duration_seconds",
			Help:    "Pair comparison duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// RejectedInputs counts inputs refused by the size or token limits
	RejectedInputs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_rejected_inputs_total",
			Help: "Inputs rejected before comparison",
		},
		[]string{"reason"},
	)

	// DriveComputationCount counts drive-wide computations
	DriveComputationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_drive_computations_total",
			Help: "Total number of drive plagiarism computations",
		},
		[]string{"status"},
	)

	// SubmissionsIngested counts submissions consumed from the stream
	SubmissionsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_submissions_ingested_total",
			Help: "Submissions consumed from the Redis stream",
		},
		[]string{"status"},
	)

	// CacheLookups counts result cache lookups
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codesim_result_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// InitPrometheus registers all collectors with the default registry
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			ComparisonCount,
			ComparisonDuration,
			RejectedInputs,
			DriveComputationCount,
			SubmissionsIngested,
			CacheLookups,
		)
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
