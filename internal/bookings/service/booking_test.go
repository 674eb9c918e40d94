package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

const (
	testCustomerID  = "64f1b0a1c2d3e4f5a6b7c8d9"
	testCustomerID2 = "64f1b0a1c2d3e4f5a6b7c8da"
	testRoomID      = "650000000000000000000001"
	testRoomID2     = "650000000000000000000002"
)

func newTestService(t *testing.T) (BookingService, *repository.InMemoryBookingRepository) {
	t.Helper()

	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{
		Log:         log,
		RoomLockTTL: 5 * time.Second,
	}
	repo := repository.NewInMemoryBookingRepository()
	svc := NewBookingService(repo, repo, validator.NewBookingValidator(log), nil, cfg)
	return svc, repo
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newBooking(customerID, roomID string, checkIn, checkOut time.Time) *model.Booking {
	return &model.Booking{
		CustomerID: customerID,
		HotelName:  "Grand Plaza",
		RoomID:     roomID,
		RoomNumber: "101",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
		TotalPrice: 400,
	}
}

func assertAppErrorCode(t *testing.T, err error, wantCode string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", wantCode)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Fatalf("error code = %s, want %s (err: %v)", appErr.Code, wantCode, err)
	}
	return appErr
}

func TestCreateBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	created, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == "" {
		t.Error("created booking has no ID")
	}
	if created.Status != model.StatusPending {
		t.Errorf("status = %s, want %s", created.Status, model.StatusPending)
	}
	if !created.CheckIn.Equal(day(2025, time.June, 1)) {
		t.Errorf("check-in = %v, want midnight UTC", created.CheckIn)
	}
}

func TestCreateNormalizesDatesToCalendarDays(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID,
		time.Date(2025, time.June, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC),
	)
	created, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !created.CheckIn.Equal(day(2025, time.June, 1)) {
		t.Errorf("check-in = %v, want %v", created.CheckIn, day(2025, time.June, 1))
	}
	if !created.CheckOut.Equal(day(2025, time.June, 5)) {
		t.Errorf("check-out = %v, want %v", created.CheckOut, day(2025, time.June, 5))
	}
}

func TestCreateInvalidDateRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"checkout before checkin", day(2025, time.June, 5), day(2025, time.June, 1)},
		{"checkout equals checkin", day(2025, time.June, 1), day(2025, time.June, 1)},
		{
			// Different clock times on the same calendar day collapse to a
			// zero-night stay after normalization.
			"same day different hours",
			time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 1, 21, 0, 0, 0, time.UTC),
		},
		{"missing checkout", day(2025, time.June, 1), time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := newBooking(testCustomerID, testRoomID, tt.checkIn, tt.checkOut)
			_, err := svc.Create(ctx, booking)
			appErr := assertAppErrorCode(t, err, apperrors.CodeInvalidDateRange)
			if appErr.StatusCode() != 400 {
				t.Errorf("status = %d, want 400", appErr.StatusCode())
			}
		})
	}
}

func TestCreateOverlapRejected(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	overlapping := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"identical stay different guest only", day(2025, time.June, 1), day(2025, time.June, 5)},
		{"tail overlap", day(2025, time.June, 4), day(2025, time.June, 8)},
		{"head overlap", day(2025, time.May, 30), day(2025, time.June, 2)},
		{"contained", day(2025, time.June, 2), day(2025, time.June, 3)},
		{"containing", day(2025, time.May, 30), day(2025, time.June, 10)},
	}

	for _, tt := range overlapping {
		t.Run(tt.name, func(t *testing.T) {
			second := newBooking(testCustomerID2, testRoomID, tt.checkIn, tt.checkOut)
			_, err := svc.Create(ctx, second)
			appErr := assertAppErrorCode(t, err, apperrors.CodeRoomUnavailable)
			if appErr.StatusCode() != 409 {
				t.Errorf("status = %d, want 409", appErr.StatusCode())
			}
		})
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("booking count = %d, want 1 (rejected stays must not persist)", count)
	}
}

func TestCreateBackToBackStays(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Checkout day equals the next check-in day: the room turns over.
	second := newBooking(testCustomerID2, testRoomID, day(2025, time.June, 5), day(2025, time.June, 8))
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatalf("back to back Create failed: %v", err)
	}

	before := newBooking(testCustomerID2, testRoomID, day(2025, time.May, 28), day(2025, time.June, 1))
	if _, err := svc.Create(ctx, before); err != nil {
		t.Fatalf("preceding back to back Create failed: %v", err)
	}
}

func TestCreateDifferentRoomsDoNotConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	second := newBooking(testCustomerID2, testRoomID2, day(2025, time.June, 1), day(2025, time.June, 5))
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatalf("Create in a different room failed: %v", err)
	}
}

func TestCreateIdenticalResubmissionIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	first, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	resubmitted := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	second, err := svc.Create(ctx, resubmitted)
	if err != nil {
		t.Fatalf("resubmission must succeed, got: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("resubmission returned ID %s, want existing %s", second.ID, first.ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("booking count = %d, want 1 (resubmission must not insert)", count)
	}
}

func TestCancelledBookingReleasesDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	created, err := svc.Create(ctx, first)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(ctx, created.ID, &model.BookingUpdate{Status: model.StatusCancelled}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	second := newBooking(testCustomerID2, testRoomID, day(2025, time.June, 2), day(2025, time.June, 4))
	if _, err := svc.Create(ctx, second); err != nil {
		t.Fatalf("Create over cancelled stay failed: %v", err)
	}
}

func TestUpdateExcludesOwnBookingFromOverlapCheck(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	created, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Extending the stay overlaps the booking's own current dates; that
	// must not count as a conflict.
	newOut := day(2025, time.June, 7)
	updated, err := svc.Update(ctx, created.ID, &model.BookingUpdate{CheckOut: &newOut})
	if err != nil {
		t.Fatalf("extending own stay failed: %v", err)
	}
	if !updated.CheckOut.Equal(newOut) {
		t.Errorf("check-out = %v, want %v", updated.CheckOut, newOut)
	}
}

func TestUpdateRejectsOverlapWithOtherBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	second := newBooking(testCustomerID2, testRoomID, day(2025, time.June, 5), day(2025, time.June, 8))
	createdSecond, err := svc.Create(ctx, second)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	// Pulling the second stay's check-in forward collides with the first.
	newIn := day(2025, time.June, 4)
	_, err = svc.Update(ctx, createdSecond.ID, &model.BookingUpdate{CheckIn: &newIn})
	assertAppErrorCode(t, err, apperrors.CodeRoomUnavailable)

	// The stored booking is unchanged.
	current, err := svc.GetByID(ctx, createdSecond.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !current.CheckIn.Equal(day(2025, time.June, 5)) {
		t.Errorf("check-in mutated to %v after rejected update", current.CheckIn)
	}
}

func TestUpdateWithoutDateChangeSkipsOverlapCheck(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	created, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newGuests := 3
	updated, err := svc.Update(ctx, created.ID, &model.BookingUpdate{Guests: &newGuests})
	if err != nil {
		t.Fatalf("guest count update failed: %v", err)
	}
	if updated.Guests != 3 {
		t.Errorf("guests = %d, want 3", updated.Guests)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"pending to confirmed", model.StatusPending, model.StatusConfirmed, false},
		{"pending to cancelled", model.StatusPending, model.StatusCancelled, false},
		{"confirmed to cancelled", model.StatusConfirmed, model.StatusCancelled, false},
		{"confirmed to pending", model.StatusConfirmed, model.StatusPending, true},
		{"cancelled to confirmed", model.StatusCancelled, model.StatusConfirmed, true},
		{"cancelled to pending", model.StatusCancelled, model.StatusPending, true},
		{"same status is a no-op", model.StatusConfirmed, model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
			booking.Status = tt.from
			created, err := svc.Create(ctx, booking)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			_, err = svc.Update(ctx, created.ID, &model.BookingUpdate{Status: tt.to})
			if tt.wantErr {
				assertAppErrorCode(t, err, apperrors.CodeValidation)
			} else if err != nil {
				t.Fatalf("transition %s -> %s failed: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "650000000000000000000099")
	appErr := assertAppErrorCode(t, err, apperrors.CodeNotFound)
	if appErr.StatusCode() != 404 {
		t.Errorf("status = %d, want 404", appErr.StatusCode())
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	newGuests := 2
	_, err := svc.Update(context.Background(), "650000000000000000000099", &model.BookingUpdate{Guests: &newGuests})
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestDeleteBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking := newBooking(testCustomerID, testRoomID, day(2025, time.June, 1), day(2025, time.June, 5))
	created, err := svc.Create(ctx, booking)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = svc.GetByID(ctx, created.ID)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)

	err = svc.Delete(ctx, created.ID)
	assertAppErrorCode(t, err, apperrors.CodeNotFound)
}

func TestSearchByRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	stays := [][2]time.Time{
		{day(2025, time.June, 1), day(2025, time.June, 5)},
		{day(2025, time.June, 10), day(2025, time.June, 12)},
		{day(2025, time.July, 1), day(2025, time.July, 3)},
	}
	for _, s := range stays {
		if _, err := svc.Create(ctx, newBooking(testCustomerID, testRoomID, s[0], s[1])); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := svc.Create(ctx, newBooking(testCustomerID, testRoomID2, day(2025, time.June, 1), day(2025, time.June, 5))); err != nil {
		t.Fatalf("Create in other room failed: %v", err)
	}

	all, err := svc.SearchByRoom(ctx, testRoomID, nil, nil, 0, 0)
	if err != nil {
		t.Fatalf("SearchByRoom failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d bookings, want 3", len(all))
	}

	from := day(2025, time.June, 8)
	to := day(2025, time.June, 30)
	windowed, err := svc.SearchByRoom(ctx, testRoomID, &from, &to, 0, 0)
	if err != nil {
		t.Fatalf("windowed SearchByRoom failed: %v", err)
	}
	if len(windowed) != 1 {
		t.Fatalf("got %d bookings in window, want 1", len(windowed))
	}
	if !windowed[0].CheckIn.Equal(day(2025, time.June, 10)) {
		t.Errorf("unexpected booking in window: check-in %v", windowed[0].CheckIn)
	}

	_, err = svc.SearchByRoom(ctx, "", nil, nil, 0, 0)
	assertAppErrorCode(t, err, apperrors.CodeInvalidInput)
}

// Two concurrent writers racing for the same dates: at most one may win.
// The loser sees either the overlap conflict or lock contention, both 409s.
func TestConcurrentCreatesSameRoom(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	results := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			customerID := testCustomerID
			if i%2 == 0 {
				customerID = testCustomerID2
			}
			b := newBooking(customerID, testRoomID, day(2025, time.June, 1+i%3), day(2025, time.June, 6))
			_, results[i] = svc.Create(ctx, b)
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr := apperrors.AsAppError(err)
		if appErr == nil {
			t.Errorf("writer %d: unexpected error type %T: %v", i, err, err)
			continue
		}
		if appErr.StatusCode() != 409 {
			t.Errorf("writer %d: status = %d, want 409 (%v)", i, appErr.StatusCode(), err)
		}
	}

	if successes < 1 {
		t.Error("no writer succeeded")
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	// Every persisted pair must be disjoint.
	stored, err := repo.FindAll(ctx, 0, 0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if int64(len(stored)) != count {
		t.Fatalf("FindAll returned %d, Count returned %d", len(stored), count)
	}
	for i := 0; i < len(stored); i++ {
		for j := i + 1; j < len(stored); j++ {
			a, b := stored[i], stored[j]
			if a.CheckIn.Before(b.CheckOut) && b.CheckIn.Before(a.CheckOut) {
				t.Errorf("double booking persisted: [%v,%v) and [%v,%v)",
					a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut)
			}
		}
	}
}
