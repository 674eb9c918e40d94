package model

import "time"

const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"

	RoomAvailable   = "available"
	RoomUnavailable = "unavailable"
)

// Room is the physical inventory record. Its document id is the stable
// identifier bookings reference; room_number is the human-facing label.
type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomNumber string    `json:"room_number" bson:"room_number" validate:"required,min=1,max=10"`
	Type       string    `json:"type" bson:"type" validate:"required,oneof=single double suite"`
	BasePrice  float64   `json:"base_price" bson:"base_price" validate:"required,gt=0"`
	Amenities  []string  `json:"amenities" bson:"amenities" validate:"omitempty,dive,min=1,max=50"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available unavailable"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// RoomUpdate is a partial patch for a room.
type RoomUpdate struct {
	RoomNumber string    `json:"room_number,omitempty" validate:"omitempty,min=1,max=10"`
	Type       string    `json:"type,omitempty" validate:"omitempty,oneof=single double suite"`
	BasePrice  *float64  `json:"base_price,omitempty" validate:"omitempty,gt=0"`
	Amenities  *[]string `json:"amenities,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Status     string    `json:"status,omitempty" validate:"omitempty,oneof=available unavailable"`
}
