package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the booking statuses that participate in availability
// conflict checks. Cancelled bookings release their dates.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// Booking ties a customer to a room for a half-open [check_in, check_out)
// stay. RoomID is the stable room identifier used by the availability guard;
// RoomNumber is carried for display only and never keys a conflict query.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerID string    `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	HotelName  string    `json:"hotel_name" bson:"hotel_name" validate:"required,min=2,max=100"`
	RoomID     string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	RoomNumber string    `json:"room_number" bson:"room_number" validate:"required,min=1,max=10"`
	CheckIn    time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Guests     int       `json:"guests" bson:"guests" validate:"required,min=1,max=10"`
	TotalPrice float64   `json:"total_price" bson:"total_price" validate:"gte=0"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// Active reports whether the booking occupies its room for conflict purposes.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingUpdate is a partial patch. Nil / zero fields are left untouched by
// the merge in the booking service.
type BookingUpdate struct {
	HotelName  string     `json:"hotel_name,omitempty" validate:"omitempty,min=2,max=100"`
	RoomID     string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	RoomNumber string     `json:"room_number,omitempty" validate:"omitempty,min=1,max=10"`
	CheckIn    *time.Time `json:"check_in,omitempty" validate:"omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty" validate:"omitempty"`
	Guests     *int       `json:"guests,omitempty" validate:"omitempty,min=1,max=10"`
	TotalPrice *float64   `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	Status     string     `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// TouchesAvailability reports whether the patch changes any field the
// overlap check depends on.
func (u *BookingUpdate) TouchesAvailability() bool {
	return u.RoomID != "" || u.CheckIn != nil || u.CheckOut != nil
}
