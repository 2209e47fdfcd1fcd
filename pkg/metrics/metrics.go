package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "usersync"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// WebhookEvents counts handled deliveries by event type and outcome
	// (created, updated, deleted, noop, ignored, duplicate, rejected, failed).
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "webhook_events_total", Help: "Webhook deliveries by event type and outcome."},
		[]string{"type", "outcome"},
	)
	SignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "webhook_signature_failures_total", Help: "Deliveries rejected for missing headers or bad signatures."},
	)
	WebhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "webhook_duration_seconds", Help: "Time spent syncing a verified delivery.", Buckets: prometheus.DefBuckets},
		[]string{"type"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(WebhookEvents)
	reg.MustRegister(SignatureFailures)
	reg.MustRegister(WebhookDuration)
}
