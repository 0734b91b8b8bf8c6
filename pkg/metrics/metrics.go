package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adhub"

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	BookingOperations *prometheus.CounterVec
	BookingDuration   *prometheus.HistogramVec
	EventsPublished   *prometheus.CounterVec
	MessagesConsumed  *prometheus.CounterVec
	ConsumeDuration   prometheus.Histogram
	RateLimited       prometheus.Counter
	IdempotentReplays prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		BookingOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking workflow operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		BookingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_operation_duration_seconds",
			Help:      "Booking workflow latency including the store transaction",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker by type and outcome",
		}, []string{"event_type", "outcome"}),

		MessagesConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Broker messages processed by topic and outcome",
		}, []string{"topic", "outcome"}),

		ConsumeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_consume_duration_seconds",
			Help:      "Time spent handling one broker message",
			Buckets:   prometheus.DefBuckets,
		}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests refused by the per-client rate limiter",
		}),

		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency cache",
		}),
	}
}

// Outcome maps a workflow error to its outcome label. rejected is any
// client-caused failure, error is everything else.
func Outcome(err error, isClientError func(error) bool) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case isClientError != nil && isClientError(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
