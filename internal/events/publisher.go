package events

import (
	"context"
	"time"

	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// Publisher emits booking lifecycle events. Implementations must be safe for
// concurrent use; publishing is best-effort and must never fail a booking
// write.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) {
	event := BookingEvent{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		HotelName:  booking.HotelName,
		RoomID:     booking.RoomID,
		RoomNumber: booking.RoomNumber,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}

	// Keyed by room so all events for one room stay ordered.
	msg, err := kafka.NewMessage().
		WithKey(booking.RoomID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("reservations").
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", eventType, "booking_id", booking.ID, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"room_id", booking.RoomID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "event_type", eventType, "booking_id", booking.ID)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when events are disabled by configuration.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingEvent(context.Context, string, *model.Booking) {}

func (NoopPublisher) Close() error { return nil }
