package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"adhub/pkg/kafka"
	"adhub/pkg/logger"
	"adhub/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func eventMessage(eventType string) kafka.Message {
	return kafka.Message{
		Topic:   "booking-events",
		Key:     "space-1",
		Headers: map[string]string{kafka.HeaderEventType: eventType},
	}
}

func TestMetricsProducerMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mw := MetricsProducerMiddleware(m)

	_ = mw(context.Background(), eventMessage("booking.created"), func(context.Context, kafka.Message) error { return nil })
	_ = mw(context.Background(), eventMessage("booking.created"), func(context.Context, kafka.Message) error { return errors.New("down") })

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("booking.created", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("booking.created", metrics.OutcomeError)))
}

func TestMetricsConsumerMiddleware_LabelsByErrorClass(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mw := MetricsConsumerMiddleware(m)

	_ = mw(context.Background(), eventMessage("booking.approved"), func(context.Context, kafka.Message) error {
		return kafka.NewPermanentError("decode", nil)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesConsumed.WithLabelValues("booking-events", "permanent")))
}

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf})
	mw := LoggingConsumerMiddleware(log)

	err := mw(context.Background(), eventMessage("booking.approved"), func(context.Context, kafka.Message) error { return nil })

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "processed message")
	assert.Contains(t, buf.String(), "booking.approved")
}
