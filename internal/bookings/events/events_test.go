package events

import (
	"context"
	"testing"
	"time"

	"adhub/pkg/kafka"
	"adhub/pkg/middleware"
	"adhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	msgs []kafka.Message
}

func (c *captureProducer) Publish(_ context.Context, msg kafka.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &captureProducer{}
	pub := NewKafkaPublisher(producer, "adhub-api")
	ctx := middleware.WithRequestID(context.Background(), "req-42")

	booking := &model.Booking{
		ID:              "b-1",
		AdSpaceID:       "as-1",
		AdvertiserEmail: "ads@acme.test",
		StartDate:       model.NewDate(2030, time.March, 1),
		EndDate:         model.NewDate(2030, time.March, 8),
		Status:          model.BookingApproved,
		TotalCost:       model.MustMoney("800"),
	}
	require.NoError(t, pub.Publish(ctx, BookingApproved, booking))

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "b-1", msg.Key)
	assert.Equal(t, "booking.approved", msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.Equal(t, "adhub-api", msg.Headers[kafka.HeaderSource])
	assert.Equal(t, SchemaVersion, msg.Headers[kafka.HeaderSchemaVersion])

	var event Event
	require.NoError(t, msg.DecodeValue(&event))
	assert.Equal(t, BookingApproved, event.Type)
	assert.Equal(t, "ads@acme.test", event.Booking.AdvertiserEmail)
	assert.True(t, event.Booking.TotalCost.Equal(model.MustMoney("800")))
	assert.True(t, event.Booking.EndDate.Equal(booking.EndDate))
}

func TestNewMessage_RequiresBookingID(t *testing.T) {
	_, err := NewMessage(context.Background(), BookingCreated, &model.Booking{}, "adhub-api")
	assert.ErrorIs(t, err, kafka.ErrInvalidMessage)
}

func TestEventType_Valid(t *testing.T) {
	assert.True(t, BookingCreated.Valid())
	assert.False(t, EventType("booking.deleted").Valid())
}
