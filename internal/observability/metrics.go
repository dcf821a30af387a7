package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	submissionScore     prometheus.Histogram
	gradeOverridesTotal *prometheus.CounterVec
	lifecycleTotal      *prometheus.CounterVec
	materialUploads     *prometheus.CounterVec
	transcriptCache     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edusync",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Name:      "http_errors_total",
			Help:      "Total number of error responses.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Subsystem: "grading",
			Name:      "submissions_total",
			Help:      "Submissions processed by the grading engine, labelled by outcome.",
		}, []string{"outcome"})

		submissionScore = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "edusync",
			Subsystem: "grading",
			Name:      "score_ratio",
			Help:      "Distribution of auto-graded scores as a fraction of total marks.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		})

		gradeOverridesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Subsystem: "grading",
			Name:      "overrides_total",
			Help:      "Instructor grade overrides, labelled by outcome.",
		}, []string{"outcome"})

		lifecycleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Subsystem: "assessments",
			Name:      "lifecycle_total",
			Help:      "Assessment lifecycle operations, labelled by action.",
		}, []string{"action"})

		materialUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Subsystem: "materials",
			Name:      "uploads_total",
			Help:      "Course material uploads, labelled by outcome.",
		}, []string{"outcome"})

		transcriptCache = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edusync",
			Subsystem: "results",
			Name:      "transcript_cache_total",
			Help:      "Transcript cache lookups, labelled by hit or miss.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			submissionScore,
			gradeOverridesTotal,
			lifecycleTotal,
			materialUploads,
			transcriptCache,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions counts submissions by outcome (graded, rejected).
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionScore observes auto-graded score ratios.
func SubmissionScore() prometheus.Histogram {
	RegisterMetrics()
	return submissionScore
}

// GradeOverrides counts instructor overrides.
func GradeOverrides() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeOverridesTotal
}

// AssessmentLifecycle counts create, update, publish and delete operations.
func AssessmentLifecycle() *prometheus.CounterVec {
	RegisterMetrics()
	return lifecycleTotal
}

// MaterialUploads counts material uploads.
func MaterialUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return materialUploads
}

// TranscriptCache counts transcript cache hits and misses.
func TranscriptCache() *prometheus.CounterVec {
	RegisterMetrics()
	return transcriptCache
}
