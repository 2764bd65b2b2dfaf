package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BackendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of backend API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	BackendRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_request_total",
		Help: "Number of backend API requests",
	}, []string{"operation", "status"})

	PrimaryActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_primary_actions_total",
		Help: "Primary recommendation calls by action",
	}, []string{"action"})

	UtilityActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_utility_actions_total",
		Help: "Utility lookups by action",
	}, []string{"action"})

	StaleResponsesDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_stale_responses_discarded_total",
		Help: "Primary responses dropped because a newer call was issued",
	})

	FeedbackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_feedback_submissions_total",
		Help: "Feedback submissions by outcome",
	}, []string{"outcome"})

	CommentFetches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_comment_fetches_total",
		Help: "Comment thread fetches issued to the backend",
	})

	TrainRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_train_runs_total",
		Help: "Model training runs by outcome",
	}, []string{"outcome"})
)

// MustRegister registers the panel metrics.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		BackendRequestDuration,
		BackendRequestTotal,
		PrimaryActionsTotal,
		UtilityActionsTotal,
		StaleResponsesDiscarded,
		FeedbackSubmissions,
		CommentFetches,
		TrainRuns,
	)
}

// ObserveBackendRequest records the duration and status of one backend call.
func ObserveBackendRequest(operation string, start time.Time, err error) {
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	BackendRequestDuration.WithLabelValues(operation, status).Observe(duration)
	BackendRequestTotal.WithLabelValues(operation, status).Inc()
}
