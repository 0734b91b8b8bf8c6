package events

import (
	"context"
	"fmt"
	"time"

	"adhub/pkg/kafka"
	"adhub/pkg/middleware"
	"adhub/pkg/model"
)

type EventType string

const (
	BookingCreated  EventType = "booking.created"
	BookingApproved EventType = "booking.approved"
	BookingRejected EventType = "booking.rejected"
)

const SchemaVersion = "1"

func (t EventType) Valid() bool {
	switch t {
	case BookingCreated, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// Event is the payload written to the booking events topic.
type Event struct {
	Type       EventType     `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Booking    model.Booking `json:"booking"`
}

// Publisher announces committed booking state changes.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, booking *model.Booking) error
}

// messageProducer is satisfied by *kafka.Producer.
type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer messageProducer
	source   string
}

func NewKafkaPublisher(producer messageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType EventType, booking *model.Booking) error {
	msg, err := NewMessage(ctx, eventType, booking, p.source)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NewMessage keys the event by booking id and carries the request id as the
// correlation id.
func NewMessage(ctx context.Context, eventType EventType, booking *model.Booking, source string) (kafka.Message, error) {
	if booking == nil || booking.ID == "" {
		return kafka.Message{}, fmt.Errorf("%w: booking id is required", kafka.ErrInvalidMessage)
	}
	return kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(Event{
			Type:       eventType,
			OccurredAt: time.Now().UTC(),
			Booking:    *booking,
		}).
		WithEventType(string(eventType)).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithCorrelationID(middleware.GetRequestID(ctx)).
		Build()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, EventType, *model.Booking) error { return nil }
