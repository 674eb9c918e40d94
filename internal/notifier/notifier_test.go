package notifier

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"roomly/internal/events"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
)

func TestHandleDecodesBookingEvent(t *testing.T) {
	n := NewNotifier(logger.New(logger.Config{Output: io.Discard}))

	event := events.BookingEvent{
		BookingID:  "650000000000000000000010",
		CustomerID: "64f1b0a1c2d3e4f5a6b7c8d9",
		HotelName:  "Grand Plaza",
		RoomID:     "650000000000000000000001",
		RoomNumber: "101",
		CheckIn:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		Status:     "confirmed",
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	msg := kafka.Message{
		Key:   event.RoomID,
		Value: payload,
		Headers: map[string]string{
			kafka.HeaderEventType: events.BookingCreated,
		},
	}

	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
}

// An undecodable payload is dropped, not retried: returning an error would
// wedge the consumer on a poison message.
func TestHandleDropsUndecodablePayload(t *testing.T) {
	n := NewNotifier(logger.New(logger.Config{Output: io.Discard}))

	msg := kafka.Message{
		Value:   []byte("not json"),
		Headers: map[string]string{},
	}

	if err := n.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle must swallow poison messages, got: %v", err)
	}
}

func TestComposeMessage(t *testing.T) {
	n := NewNotifier(logger.New(logger.Config{Output: io.Discard}))

	event := &events.BookingEvent{
		BookingID:  "650000000000000000000010",
		HotelName:  "Grand Plaza",
		RoomNumber: "101",
		CheckIn:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		Status:     "pending",
	}

	tests := []struct {
		eventType string
		contains  string
	}{
		{events.BookingCreated, "is pending"},
		{events.BookingCancelled, "cancelled"},
		{events.BookingDeleted, "removed"},
		{"unknown.event", event.BookingID},
	}

	for _, tt := range tests {
		msg := n.composeMessage(tt.eventType, event)
		if !strings.Contains(msg, tt.contains) {
			t.Errorf("composeMessage(%s) = %q, want it to contain %q", tt.eventType, msg, tt.contains)
		}
		if tt.eventType != "unknown.event" && !strings.Contains(msg, "2025-06-01") {
			t.Errorf("composeMessage(%s) = %q, missing stay dates", tt.eventType, msg)
		}
	}
}
