package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce        sync.Once
	workflowTransitions *prometheus.CounterVec
	submissionChanges   *prometheus.CounterVec
	deletions           *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the tracker.
func RegisterMetrics() {
	registerOnce.Do(func() {
		workflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_workflow_transitions_total",
			Help: "State machine transitions by workflow and transition name.",
		}, []string{"workflow", "transition"})

		submissionChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_submission_changes_total",
			Help: "Submission records flipped, by action.",
		}, []string{"action"})

		deletions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_deletions_total",
			Help: "Assignment deletions by outcome (deleted, undone, finalized).",
		}, []string{"outcome"})

		persistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_persistence_failures_total",
			Help: "Snapshot store failures by operation.",
		}, []string{"operation"})

		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "Latency of presentation bridge requests.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"method", "route"})

		prometheus.MustRegister(workflowTransitions, submissionChanges, deletions, persistenceFailures, requestDuration)
	})
}

// WorkflowTransitions exposes the transition counter.
func WorkflowTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return workflowTransitions
}

// SubmissionChanges exposes the submission flip counter.
func SubmissionChanges() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionChanges
}

// Deletions exposes the deletion outcome counter.
func Deletions() *prometheus.CounterVec {
	RegisterMetrics()
	return deletions
}

// PersistenceFailures exposes the store failure counter.
func PersistenceFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return persistenceFailures
}

// RequestDuration exposes the bridge latency histogram.
func RequestDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestDuration
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
