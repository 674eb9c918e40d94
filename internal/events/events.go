package events

import "time"

const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
	BookingDeleted   = "booking.deleted"
)

// BookingEvent is the payload published for every booking lifecycle change.
// Dates are calendar days serialized at midnight UTC.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	HotelName  string    `json:"hotel_name,omitempty"`
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number,omitempty"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
