package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"adhub/internal/bookings/events"
	"adhub/pkg/kafka"
	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func eventMessage(t *testing.T, eventType events.EventType) kafka.Message {
	t.Helper()
	booking := &model.Booking{
		ID:              "b1",
		AdSpaceID:       "space-1",
		AdvertiserEmail: "ads@acme.test",
		Status:          model.BookingApproved,
	}
	msg, err := events.NewMessage(context.Background(), eventType, booking, "adhub-api")
	require.NoError(t, err)
	return msg
}

func TestHandle_ApprovedEventIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf})
	h := NewHandler(NewLogSender(log), log)

	require.NoError(t, h.Handle(context.Background(), eventMessage(t, events.BookingApproved)))

	assert.Contains(t, buf.String(), "booking approved for ads@acme.test")
	assert.Contains(t, buf.String(), `"booking_id":"b1"`)
}

func TestHandle_SubjectPerEventType(t *testing.T) {
	tests := map[events.EventType]string{
		events.BookingCreated:  "booking request received for ads@acme.test",
		events.BookingApproved: "booking approved for ads@acme.test",
		events.BookingRejected: "booking rejected for ads@acme.test",
	}

	for eventType, want := range tests {
		t.Run(string(eventType), func(t *testing.T) {
			sender := &recordingSender{}
			h := NewHandler(sender, logger.New(logger.Config{Output: &bytes.Buffer{}}))

			require.NoError(t, h.Handle(context.Background(), eventMessage(t, eventType)))
			require.Len(t, sender.sent, 1)
			assert.Equal(t, want, sender.sent[0].Subject)
			assert.Equal(t, "ads@acme.test", sender.sent[0].To)
			assert.Equal(t, "b1", sender.sent[0].BookingID)
		})
	}
}

func TestHandle_MalformedPayloadIsPermanent(t *testing.T) {
	h := NewHandler(&recordingSender{}, logger.New(logger.Config{Output: &bytes.Buffer{}}))

	for name, value := range map[string]string{
		"not json":      `{"type":`,
		"unknown type":  `{"type":"booking.cancelled","booking":{"id":"b1","advertiser_email":"a@b.test"}}`,
		"missing email": `{"type":"booking.approved","booking":{"id":"b1"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			err := h.Handle(context.Background(), kafka.Message{Value: []byte(value)})
			require.Error(t, err)
			assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
		})
	}
}

func TestHandle_SendFailureIsTransient(t *testing.T) {
	h := NewHandler(&recordingSender{err: errors.New("smtp unavailable")}, logger.New(logger.Config{Output: &bytes.Buffer{}}))

	err := h.Handle(context.Background(), eventMessage(t, events.BookingApproved))
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}
