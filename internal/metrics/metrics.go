// Package metrics provides Prometheus instrumentation for the report bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookBatchSize       prometheus.Histogram

	// Submission metrics
	SubmissionsTotal *prometheus.CounterVec

	// Reply delivery metrics
	ReplyFailuresTotal *prometheus.CounterVec

	// Repository metrics
	RepositoryDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "repotomo_webhook_events_total",
				Help: "Total number of webhook events by type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, dropped
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repotomo_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"}, // event_type: message, postback, follow, unfollow
		),

		WebhookBatchSize: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repotomo_webhook_batch_size",
				Help:    "Number of events delivered per webhook call",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),

		SubmissionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "repotomo_submissions_total",
				Help: "Total number of report submissions by source and status",
			},
			[]string{"source", "status"}, // source: line, web; status: completed, pending_question, duplicate
		),

		ReplyFailuresTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "repotomo_reply_failures_total",
				Help: "Total number of failed reply deliveries by reason",
			},
			[]string{"reason"}, // reason: timeout, invalid_token, api_error
		),

		RepositoryDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repotomo_repository_duration_seconds",
				Help:    "Repository operation duration in seconds by operation",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "repotomo_rate_limiter_dropped_total",
				Help: "Total number of operations delayed or dropped by rate limiting",
			},
			[]string{"limiter"},
		),
	}
}

// RecordEvent records a processed webhook event with its outcome and duration.
func (m *Metrics) RecordEvent(eventType, status string, durationSeconds float64) {
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
	if durationSeconds > 0 {
		m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(durationSeconds)
	}
}

// RecordSubmission records a created (or deduplicated) report submission.
func (m *Metrics) RecordSubmission(source, status string) {
	m.SubmissionsTotal.WithLabelValues(source, status).Inc()
}

// RecordReplyFailure records a failed reply delivery.
func (m *Metrics) RecordReplyFailure(reason string) {
	m.ReplyFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordRepositoryOp records the duration of a repository operation.
func (m *Metrics) RecordRepositoryOp(operation string, durationSeconds float64) {
	m.RepositoryDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordRateLimiterDrop records a rate limiter intervention.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}
