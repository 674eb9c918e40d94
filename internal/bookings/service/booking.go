package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/internal/events"
	"roomly/pkg/config"
	"roomly/pkg/daterange"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService is the conflict guard in front of the booking collection.
// It enforces the one invariant the system has: no two active bookings on
// the same room may intersect under [check_in, check_out) semantics.
type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	SearchByRoom(ctx context.Context, roomID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create admits a booking after the duplicate and overlap probes pass. An
// identical resubmission (same customer, room and stay) returns the stored
// booking as a success with no second insert. The probes and the insert run
// inside one transaction while the per-room advisory lock is held, so two
// concurrent writers cannot both pass the overlap check.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	s.applyDefaults(booking)
	s.sanitize(booking)
	s.normalizeDates(booking)

	if err := s.validateDates(booking.CheckIn, booking.CheckOut); err != nil {
		return nil, err
	}
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	lockID, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var result *model.Booking
	var resubmission bool

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindDuplicate(sessCtx, booking.CustomerID, booking.RoomID, booking.CheckIn, booking.CheckOut)
		if err != nil {
			return apperrors.Internal("Failed to check for duplicate booking", err)
		}
		if existing != nil {
			result = existing
			resubmission = true
			return nil
		}

		if err := s.verifyAvailability(sessCtx, booking, ""); err != nil {
			return err
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrRoomUnavailable) {
				return apperrors.RoomUnavailable("Room not available for the selected dates.")
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		result = booking
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
		return nil, err
	}

	if resubmission {
		s.cfg.Log.Info("Duplicate booking submission, returning existing record",
			"id", result.ID,
			"customer_id", result.CustomerID,
			"room_id", result.RoomID,
		)
		return result, nil
	}

	s.publisher.PublishBookingEvent(ctx, events.BookingCreated, result)

	s.cfg.Log.Info("Booking created successfully",
		"id", result.ID,
		"room_id", result.RoomID,
		"check_in", result.CheckIn,
		"check_out", result.CheckOut,
		"status", result.Status,
	)
	return result, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Update overlays the patch on the stored booking and re-validates. The
// overlap probe only runs when the patch touches room or dates, and always
// excludes the booking's own id so it cannot conflict with itself.
func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "load")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	if updates.Status != "" {
		if err := s.validator.ValidateStatusTransition(existing.Status, updates.Status); err != nil {
			return nil, apperrors.Validation("Invalid status transition", map[string]any{"error": err.Error()})
		}
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	s.normalizeDates(merged)

	if err := s.validateDates(merged.CheckIn, merged.CheckOut); err != nil {
		return nil, err
	}
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	persist := func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrRoomUnavailable) {
				return apperrors.RoomUnavailable("Room not available for the selected dates.")
			}
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	}

	if updates.TouchesAvailability() {
		lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
			}
		}()

		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.verifyAvailability(sessCtx, merged, id); err != nil {
				return err
			}
			return persist(sessCtx)
		})
		if err != nil {
			s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
			return nil, err
		}
	} else {
		if err := s.repo.ExecuteTransaction(ctx, persist); err != nil {
			s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
			return nil, err
		}
	}

	merged.ID = id

	eventType := events.BookingUpdated
	if existing.Status != model.StatusCancelled && merged.Status == model.StatusCancelled {
		eventType = events.BookingCancelled
	}
	s.publisher.PublishBookingEvent(ctx, eventType, merged)

	s.cfg.Log.Info("Booking updated successfully", "id", id, "status", merged.Status)
	return merged, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "load")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to delete booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.PublishBookingEvent(ctx, events.BookingDeleted, existing)

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

func (s *bookingService) SearchByRoom(ctx context.Context, roomID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID is required")
	}

	bookings, err := s.repo.FindByRoom(ctx, roomID, from, to, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search bookings",
			"room_id", roomID,
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search bookings", err)
	}

	s.cfg.Log.Debug("Booking search completed", "room_id", roomID, "count", len(bookings))
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.HotelName = sanitizer.NormalizeHotelName(b.HotelName)
	b.RoomNumber = sanitizer.NormalizeRoomNumber(b.RoomNumber)
}

// normalizeDates collapses stay boundaries onto midnight UTC of their
// calendar day so equality and overlap comparisons are immune to
// time-of-day and DST noise.
func (s *bookingService) normalizeDates(b *model.Booking) {
	if !b.CheckIn.IsZero() {
		b.CheckIn = daterange.Day(b.CheckIn)
	}
	if !b.CheckOut.IsZero() {
		b.CheckOut = daterange.Day(b.CheckOut)
	}
}

func (s *bookingService) validateDates(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperrors.InvalidDateRange("Both check_in and check_out are required")
	}
	if !checkOut.After(checkIn) {
		return apperrors.InvalidDateRange("check_out must be after check_in")
	}
	return nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.HotelName != "" {
		merged.HotelName = updates.HotelName
	}
	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.RoomNumber != "" {
		merged.RoomNumber = updates.RoomNumber
	}
	if updates.CheckIn != nil {
		merged.CheckIn = *updates.CheckIn
	}
	if updates.CheckOut != nil {
		merged.CheckOut = *updates.CheckOut
	}
	if updates.Guests != nil {
		merged.Guests = *updates.Guests
	}
	if updates.TotalPrice != nil {
		merged.TotalPrice = *updates.TotalPrice
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

// verifyAvailability runs the overlap probe for the booking's room. The
// repository filter already encodes half-open semantics; each candidate is
// re-checked in process so the decision never depends on the storage filter
// alone.
func (s *bookingService) verifyAvailability(ctx context.Context, booking *model.Booking, excludeID string) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, booking.RoomID, booking.CheckIn, booking.CheckOut, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check room availability", err)
	}

	for _, b := range existing {
		if !b.Active() {
			continue
		}
		if daterange.Overlaps(b.CheckIn, b.CheckOut, booking.CheckIn, booking.CheckOut) {
			return apperrors.RoomUnavailable(fmt.Sprintf(
				"Room not available for the selected dates (conflicts with stay %s to %s)",
				b.CheckIn.Format(time.DateOnly),
				b.CheckOut.Format(time.DateOnly),
			))
		}
	}
	return nil
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID, err := s.lockRepo.Acquire(ctx, roomID, s.cfg.RoomLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire room lock", err)
	}
	return lockID, nil
}

func (s *bookingService) mapRepoError(err error, id, action string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s booking", action), err)
}
