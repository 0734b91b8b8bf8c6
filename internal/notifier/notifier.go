package notifier

import (
	"context"
	"fmt"

	"adhub/internal/bookings/events"
	"adhub/pkg/kafka"
	"adhub/pkg/logger"
)

// Notification is what the advertiser would receive for a booking event.
type Notification struct {
	To        string
	Subject   string
	BookingID string
}

// Sender delivers notifications. A failed delivery is retried by the consumer.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info(n.Subject,
		"to", n.To,
		"booking_id", n.BookingID,
	)
	return nil
}

type Handler struct {
	sender Sender
	log    *logger.Logger
}

func NewHandler(sender Sender, log *logger.Logger) *Handler {
	return &Handler{sender: sender, log: log}
}

// Handle is a kafka.MessageHandler for the booking events topic.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("malformed booking event", err)
	}
	if !event.Type.Valid() {
		return kafka.NewPermanentError(fmt.Sprintf("unknown booking event type %q", event.Type), nil)
	}
	if event.Booking.ID == "" || event.Booking.AdvertiserEmail == "" {
		return kafka.NewPermanentError("booking event without booking id or advertiser email", nil)
	}

	n := notificationFor(event)
	if err := h.sender.Send(ctx, n); err != nil {
		return kafka.NewTransientError("failed to send notification", err)
	}

	h.log.Debug("Booking notification sent",
		"event_type", event.Type,
		"booking_id", event.Booking.ID,
		"correlation_id", msg.GetCorrelationID(),
	)
	return nil
}

func notificationFor(event events.Event) Notification {
	email := event.Booking.AdvertiserEmail
	var subject string
	switch event.Type {
	case events.BookingCreated:
		subject = "booking request received for " + email
	case events.BookingApproved:
		subject = "booking approved for " + email
	case events.BookingRejected:
		subject = "booking rejected for " + email
	}
	return Notification{
		To:        email,
		Subject:   subject,
		BookingID: event.Booking.ID,
	}
}
