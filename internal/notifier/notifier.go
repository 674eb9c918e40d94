package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roomly/internal/events"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
)

// Notifier turns booking lifecycle events into guest notifications. The
// delivery channel is just the log for now; the handler is where an email
// or SMS gateway would plug in.
type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle is the consumer callback. A payload that does not decode is
// unrecoverable, so it is logged and dropped rather than retried.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		n.log.Error("Dropping undecodable booking event",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	eventType := msg.Headers[kafka.HeaderEventType]
	n.log.Info("Sending booking notification",
		"event_type", eventType,
		"booking_id", event.BookingID,
		"customer_id", event.CustomerID,
		"room_id", event.RoomID,
		"message", n.composeMessage(eventType, &event),
	)
	return nil
}

func (n *Notifier) composeMessage(eventType string, event *events.BookingEvent) string {
	stay := fmt.Sprintf("%s to %s",
		event.CheckIn.Format(time.DateOnly),
		event.CheckOut.Format(time.DateOnly),
	)

	switch eventType {
	case events.BookingCreated:
		return fmt.Sprintf("Your booking at %s (room %s) is %s for %s.",
			event.HotelName, event.RoomNumber, event.Status, stay)
	case events.BookingUpdated:
		return fmt.Sprintf("Your booking at %s (room %s) was updated: %s, %s.",
			event.HotelName, event.RoomNumber, event.Status, stay)
	case events.BookingCancelled:
		return fmt.Sprintf("Your booking at %s for %s has been cancelled.",
			event.HotelName, stay)
	case events.BookingDeleted:
		return fmt.Sprintf("Your booking record at %s for %s was removed.",
			event.HotelName, stay)
	default:
		return fmt.Sprintf("Booking %s changed.", event.BookingID)
	}
}
