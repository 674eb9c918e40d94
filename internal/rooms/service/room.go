package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingrepo "roomly/internal/bookings/repository"
	roomerrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, filter repository.RoomFilter, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo        repository.RoomRepository
	bookingRepo bookingrepo.BookingRepository
	validator   *validator.RoomValidator
	cfg         *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookingRepo bookingrepo.BookingRepository,
	roomValidator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:        repo,
		bookingRepo: bookingRepo,
		validator:   roomValidator,
		cfg:         cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.applyDefaults(room)
	s.sanitize(room)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomerrors.ErrDuplicateNumber) {
			return apperrors.Conflict(fmt.Sprintf("Room number %s already exists", room.RoomNumber))
		}
		s.cfg.Log.Error("Failed to create room", "room_number", room.RoomNumber, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "room_number", room.RoomNumber)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, filter repository.RoomFilter, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "load")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeRoomUpdates(existing, updates)
	s.sanitize(merged)

	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, roomerrors.ErrDuplicateNumber) {
			return nil, apperrors.Conflict(fmt.Sprintf("Room number %s already exists", merged.RoomNumber))
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return nil, s.mapRepoError(err, id, "update")
	}

	merged.ID = id
	s.cfg.Log.Info("Room updated successfully", "id", id)
	return merged, nil
}

// Delete refuses to remove a room that bookings still reference,
// cancelled ones included. History stays intact; mark the room
// unavailable to take it out of service.
func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	bookingCount, err := s.bookingRepo.CountByRoom(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings for room", "room_id", id, "error", err)
		return apperrors.Internal("Failed to check room bookings", err)
	}
	if bookingCount > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Cannot delete room: %d booking(s) reference it", bookingCount,
		))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) applyDefaults(room *model.Room) {
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
}

func (s *roomService) sanitize(room *model.Room) {
	room.RoomNumber = sanitizer.NormalizeRoomNumber(room.RoomNumber)
	room.Amenities = sanitizer.SanitizeSlice(room.Amenities, sanitizer.NormalizeAmenity)
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.RoomNumber != "" {
		merged.RoomNumber = updates.RoomNumber
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.BasePrice != nil {
		merged.BasePrice = *updates.BasePrice
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *roomService) mapRepoError(err error, id, action string) error {
	if errors.Is(err, roomerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s room", action), err)
}
