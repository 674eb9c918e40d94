package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	bookingrepo "roomly/internal/bookings/repository"
	roomerrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// fakeRoomRepository is a map-backed stand-in enforcing the unique
// room_number constraint the real collection carries.
type fakeRoomRepository struct {
	rooms  map[string]*model.Room
	nextID int
}

func newFakeRoomRepository() *fakeRoomRepository {
	return &fakeRoomRepository{rooms: make(map[string]*model.Room)}
}

func (f *fakeRoomRepository) Create(ctx context.Context, room *model.Room) error {
	for _, r := range f.rooms {
		if r.RoomNumber == room.RoomNumber {
			return fmt.Errorf("%w: %s", roomerrors.ErrDuplicateNumber, room.RoomNumber)
		}
	}
	f.nextID++
	room.ID = fmt.Sprintf("65%022d", f.nextID)
	room.CreatedAt = time.Now().UTC()
	stored := *room
	f.rooms[room.ID] = &stored
	return nil
}

func (f *fakeRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, roomerrors.ErrNotFound
	}
	found := *room
	return &found, nil
}

func (f *fakeRoomRepository) FindAll(ctx context.Context, filter repository.RoomFilter, limit int, offset int64) ([]*model.Room, error) {
	var out []*model.Room
	for _, r := range f.rooms {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		found := *r
		out = append(out, &found)
	}
	return out, nil
}

func (f *fakeRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if _, ok := f.rooms[id]; !ok {
		return roomerrors.ErrNotFound
	}
	for otherID, r := range f.rooms {
		if otherID != id && r.RoomNumber == room.RoomNumber {
			return fmt.Errorf("%w: %s", roomerrors.ErrDuplicateNumber, room.RoomNumber)
		}
	}
	stored := *room
	stored.ID = id
	f.rooms[id] = &stored
	return nil
}

func (f *fakeRoomRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.rooms[id]; !ok {
		return roomerrors.ErrNotFound
	}
	delete(f.rooms, id)
	return nil
}

func (f *fakeRoomRepository) Count(ctx context.Context, filter repository.RoomFilter) (int64, error) {
	rooms, _ := f.FindAll(ctx, filter, 0, 0)
	return int64(len(rooms)), nil
}

func newTestRoomService(t *testing.T) (RoomService, *fakeRoomRepository, *bookingrepo.InMemoryBookingRepository) {
	t.Helper()

	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{Log: log}
	roomRepo := newFakeRoomRepository()
	bookings := bookingrepo.NewInMemoryBookingRepository()
	svc := NewRoomService(roomRepo, bookings, validator.NewRoomValidator(log), cfg)
	return svc, roomRepo, bookings
}

func validRoom() *model.Room {
	return &model.Room{
		RoomNumber: "101",
		Type:       model.RoomTypeDouble,
		BasePrice:  120,
		Amenities:  []string{"wifi", "minibar"},
	}
}

func TestCreateRoom(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	room := validRoom()
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if room.ID == "" {
		t.Error("created room has no ID")
	}
	if room.Status != model.RoomAvailable {
		t.Errorf("status = %s, want default %s", room.Status, model.RoomAvailable)
	}
}

func TestCreateRoomNormalizesInput(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	room := validRoom()
	room.RoomNumber = " 12b "
	room.Amenities = []string{" WiFi ", "wifi", "", "Minibar"}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if room.RoomNumber != "12B" {
		t.Errorf("room number = %q, want %q", room.RoomNumber, "12B")
	}
	if len(room.Amenities) != 2 || room.Amenities[0] != "wifi" || room.Amenities[1] != "minibar" {
		t.Errorf("amenities = %v, want deduplicated lowercase list", room.Amenities)
	}
}

func TestCreateRoomDuplicateNumber(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	if err := svc.Create(ctx, validRoom()); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := svc.Create(ctx, validRoom())
	if err == nil {
		t.Fatal("duplicate room number accepted")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("got %v, want conflict", err)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.Room)
	}{
		{"missing number", func(r *model.Room) { r.RoomNumber = "" }},
		{"unknown type", func(r *model.Room) { r.Type = "penthouse" }},
		{"zero price", func(r *model.Room) { r.BasePrice = 0 }},
		{"unknown status", func(r *model.Room) { r.Status = "renovating" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := validRoom()
			tt.mutate(room)

			err := svc.Create(ctx, room)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateRoom(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	room := validRoom()
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newPrice := 150.0
	updated, err := svc.Update(ctx, room.ID, &model.RoomUpdate{
		BasePrice: &newPrice,
		Status:    model.RoomUnavailable,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.BasePrice != 150 {
		t.Errorf("price = %v, want 150", updated.BasePrice)
	}
	if updated.Status != model.RoomUnavailable {
		t.Errorf("status = %s, want %s", updated.Status, model.RoomUnavailable)
	}
	// Untouched fields survive the merge.
	if updated.RoomNumber != "101" {
		t.Errorf("room number = %s, want 101", updated.RoomNumber)
	}
}

func TestDeleteRoomWithBookingsBlocked(t *testing.T) {
	svc, _, bookings := newTestRoomService(t)
	ctx := context.Background()

	room := validRoom()
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A cancelled booking still pins the room: history is preserved.
	err := bookings.Create(ctx, &model.Booking{
		CustomerID: "64f1b0a1c2d3e4f5a6b7c8d9",
		HotelName:  "Grand Plaza",
		RoomID:     room.ID,
		RoomNumber: room.RoomNumber,
		CheckIn:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		Guests:     2,
		Status:     model.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("seeding booking failed: %v", err)
	}

	err = svc.Delete(ctx, room.ID)
	if err == nil {
		t.Fatal("delete of referenced room accepted")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("got %v, want conflict", err)
	}
	if appErr != nil && appErr.StatusCode() != 409 {
		t.Errorf("status = %d, want 409", appErr.StatusCode())
	}

	if _, err := svc.GetByID(ctx, room.ID); err != nil {
		t.Errorf("room disappeared after blocked delete: %v", err)
	}
}

func TestDeleteRoomWithoutBookings(t *testing.T) {
	svc, _, _ := newTestRoomService(t)
	ctx := context.Background()

	room := validRoom()
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, room.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := svc.GetByID(ctx, room.ID)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("got %v, want not found", err)
	}
}
