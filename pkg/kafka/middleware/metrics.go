package kafka_middleware

import (
	"context"
	"time"

	"adhub/pkg/kafka"
	"adhub/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)

		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		m.EventsPublished.WithLabelValues(msg.GetEventType(), outcome).Inc()
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ConsumeDuration.Observe(time.Since(start).Seconds())

		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = kafka.ClassifyError(err).String()
		}
		m.MessagesConsumed.WithLabelValues(msg.Topic, outcome).Inc()
		return err
	}
}
