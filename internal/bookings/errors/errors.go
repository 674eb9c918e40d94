package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrInvalidDateRange = errors.New("check-out must be after check-in")

	ErrRoomUnavailable = errors.New("room not available for the selected dates")

	ErrLockHeld = errors.New("room is locked by another booking request")
)
