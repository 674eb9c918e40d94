package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/daterange"
	mongotx "roomly/pkg/db/mongo"
	"roomly/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// InMemoryBookingRepository is the reference implementation backing service
// tests. One mutex guards the whole store; callers get probe-then-write
// isolation from the advisory room lock, same as production.
type InMemoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	locks    map[string]*model.RoomLock
}

func NewInMemoryBookingRepository() *InMemoryBookingRepository {
	return &InMemoryBookingRepository{
		bookings: make(map[string]*model.Booking),
		locks:    make(map[string]*model.RoomLock),
	}
}

func (r *InMemoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if booking.ID == "" {
		booking.ID = primitive.NewObjectID().Hex()
	}

	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *InMemoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}

	found := *booking
	return &found, nil
}

func (r *InMemoryBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.sortedByCheckIn()

	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

func (r *InMemoryBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}

	stored := *booking
	stored.ID = id
	stored.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.bookings[id] = &stored
	return nil
}

func (r *InMemoryBookingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}

	delete(r.bookings, id)
	return nil
}

func (r *InMemoryBookingRepository) FindDuplicate(ctx context.Context, customerID, roomID string, checkIn, checkOut time.Time) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.CustomerID == customerID &&
			b.RoomID == roomID &&
			b.CheckIn.Equal(checkIn) &&
			b.CheckOut.Equal(checkOut) {
			found := *b
			return &found, nil
		}
	}

	return nil, nil
}

func (r *InMemoryBookingRepository) FindActiveOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var overlapping []*model.Booking
	for _, b := range r.bookings {
		if b.RoomID != roomID || b.Status == model.StatusCancelled || b.ID == excludeID {
			continue
		}
		if daterange.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			found := *b
			overlapping = append(overlapping, &found)
		}
	}

	sort.Slice(overlapping, func(i, j int) bool {
		return overlapping[i].CheckIn.Before(overlapping[j].CheckIn)
	})
	return overlapping, nil
}

func (r *InMemoryBookingRepository) FindByRoom(ctx context.Context, roomID string, from, to *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*model.Booking
	for _, b := range r.sortedByCheckIn() {
		if b.RoomID != roomID {
			continue
		}
		if from != nil && !b.CheckOut.After(*from) {
			continue
		}
		if to != nil && !b.CheckIn.Before(*to) {
			continue
		}
		matched = append(matched, b)
	}

	if offset >= int64(len(matched)) {
		return []*model.Booking{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

func (r *InMemoryBookingRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, b := range r.bookings {
		if b.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryBookingRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.bookings)), nil
}

// ExecuteTransaction runs fn directly. The callbacks only use the
// SessionContext as a context.Context, so a nil session is safe here.
func (r *InMemoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// Acquire implements RoomLockRepository against the same store.
func (r *InMemoryBookingRepository) Acquire(ctx context.Context, roomID string, ttl time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lockID := "room_lock_" + roomID
	if existing, ok := r.locks[lockID]; ok && existing.ExpiresAt.After(time.Now()) {
		return "", bookingserrors.ErrLockHeld
	}

	r.locks[lockID] = &model.RoomLock{
		ID:        lockID,
		RoomID:    roomID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	return lockID, nil
}

func (r *InMemoryBookingRepository) Release(ctx context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, lockID)
	return nil
}

func (r *InMemoryBookingRepository) sortedByCheckIn() []*model.Booking {
	all := make([]*model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		found := *b
		all = append(all, &found)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CheckIn.Before(all[j].CheckIn)
	})
	return all
}
