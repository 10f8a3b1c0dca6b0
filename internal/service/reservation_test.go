package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// fakeLedger reimplements the booking invariants in memory under one
// mutex, matching the atomicity the SQL ledger provides with row locks.
type fakeLedger struct {
	mu       sync.Mutex
	nextID   uint64
	capacity map[uint64]uint32
	rows     map[uint64]*model.Reservation
}

func newFakeLedger(capacity map[uint64]uint32) *fakeLedger {
	return &fakeLedger{capacity: capacity, rows: make(map[uint64]*model.Reservation)}
}

func (f *fakeLedger) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cap, ok := f.capacity[res.ScheduleID]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	var taken uint32
	for _, r := range f.rows {
		if r.Status == model.ReservationCancelled {
			continue
		}
		if r.UserID == res.UserID && r.ScheduleID == res.ScheduleID && r.ReservationDate == res.ReservationDate {
			return repository.ErrDuplicateReservation
		}
		if r.ScheduleID == res.ScheduleID && r.ReservationDate == res.ReservationDate {
			taken++
		}
	}
	if taken >= cap {
		return repository.ErrCapacityExceeded
	}
	f.nextID++
	res.ID = f.nextID
	res.Status = model.ReservationConfirmed
	res.CreatedAt = time.Now().UTC()
	stored := *res
	f.rows[res.ID] = &stored
	return nil
}

func (f *fakeLedger) Cancel(_ context.Context, reservationID, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rows[reservationID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if r.UserID != userID {
		return repository.ErrForbidden
	}
	switch r.Status {
	case model.ReservationCancelled:
		return repository.ErrAlreadyCancelled
	case model.ReservationCompleted:
		return repository.ErrConflict
	}
	r.Status = model.ReservationCancelled
	return nil
}

func (f *fakeLedger) GetTicketForUser(_ context.Context, reservationID, userID uint64) (*repository.TicketDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rows[reservationID]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	if r.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return &repository.TicketDetail{
		ReservationID:   r.ID,
		Status:          r.Status,
		ReservationDate: r.ReservationDate,
		QRCode:          r.QRCode,
		HolderName:      "Test Rider",
		RouteName:       "HQ Express",
		DepartureTime:   "08:30:00",
	}, nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID uint64) ([]repository.ReservationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]repository.ReservationSummary, 0)
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, repository.ReservationSummary{
				ID:              r.ID,
				ScheduleID:      r.ScheduleID,
				ReservationDate: r.ReservationDate,
				Status:          r.Status,
			})
		}
	}
	return out, nil
}

// complete flips a row to completed, simulating a boarding scan.
func (f *fakeLedger) complete(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Status = model.ReservationCompleted
}

type fakeCatalog struct {
	schedules map[uint64]*model.Schedule
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return s, nil
}

func newTestService(capacity uint32, today string) (*ReservationService, *fakeLedger) {
	ledger := newFakeLedger(map[uint64]uint32{1: capacity})
	catalog := &fakeCatalog{schedules: map[uint64]*model.Schedule{
		1: {ID: 1, RouteID: 1, DepartureTime: "08:30:00", TotalSeats: capacity, IsActive: true},
	}}
	day, _ := time.Parse(clock.ServiceDayFormat, today)
	svc := NewReservationService(ledger, catalog, NopNotifier{}, clock.Fixed{T: day.Add(9 * time.Hour)})
	return svc, ledger
}

func TestCreateReservation(t *testing.T) {
	svc, _ := newTestService(10, "2026-09-01")

	res, err := svc.Create(context.Background(), 7, 1, "2026-09-02")
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, model.ReservationConfirmed, res.Status)
	assert.NotEmpty(t, res.QRCode)
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _ := newTestService(10, "2026-09-01")
	ctx := context.Background()

	_, err := svc.Create(ctx, 0, 1, "2026-09-02")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, 7, 0, "2026-09-02")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, 7, 1, "02-09-2026")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, 7, 99, "2026-09-02")
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
}

func TestCreateReservationInactiveSchedule(t *testing.T) {
	ledger := newFakeLedger(map[uint64]uint32{1: 10})
	catalog := &fakeCatalog{schedules: map[uint64]*model.Schedule{
		1: {ID: 1, IsActive: false},
	}}
	svc := NewReservationService(ledger, catalog, NopNotifier{}, clock.Fixed{T: time.Now()})

	_, err := svc.Create(context.Background(), 7, 1, "2026-09-02")
	assert.ErrorIs(t, err, repository.ErrScheduleNotFound)
}

func TestCreateReservationDuplicate(t *testing.T) {
	svc, _ := newTestService(10, "2026-09-01")
	ctx := context.Background()

	_, err := svc.Create(ctx, 7, 1, "2026-09-02")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 7, 1, "2026-09-02")
	assert.ErrorIs(t, err, repository.ErrDuplicateReservation)

	// Same rider, different day: allowed.
	_, err = svc.Create(ctx, 7, 1, "2026-09-03")
	assert.NoError(t, err)
}

func TestCreateReservationCapacityUnderConcurrency(t *testing.T) {
	svc, _ := newTestService(2, "2026-09-01")

	const riders = 3
	errs := make(chan error, riders)
	var wg sync.WaitGroup
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), userID, 1, "2026-09-02")
			errs <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(errs)

	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, repository.ErrCapacityExceeded):
			full++
		}
	}
	assert.Equal(t, 2, ok, "exactly capacity bookings must succeed")
	assert.Equal(t, 1, full, "the rest must be rejected as full")
}

func TestCancelThenRebookFreesSeat(t *testing.T) {
	svc, _ := newTestService(1, "2026-09-01")
	ctx := context.Background()

	first, err := svc.Create(ctx, 7, 1, "2026-09-02")
	require.NoError(t, err)

	// Vehicle is full for anyone else.
	_, err = svc.Create(ctx, 8, 1, "2026-09-02")
	require.ErrorIs(t, err, repository.ErrCapacityExceeded)

	require.NoError(t, svc.Cancel(ctx, first.ID, 7))

	second, err := svc.Create(ctx, 8, 1, "2026-09-02")
	require.NoError(t, err)
	assert.NotEqual(t, first.QRCode, second.QRCode, "rebooking must mint a fresh pass")
}

func TestCancelErrors(t *testing.T) {
	svc, ledger := newTestService(5, "2026-09-01")
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, 1, "2026-09-02")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, res.ID, 8), repository.ErrForbidden)
	assert.ErrorIs(t, svc.Cancel(ctx, 999, 7), repository.ErrReservationNotFound)
	assert.ErrorIs(t, svc.Cancel(ctx, 0, 7), ErrInvalidInput)

	// A foreign cancel attempt must not have changed anything.
	det, err := ledger.GetTicketForUser(ctx, res.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, det.Status)

	require.NoError(t, svc.Cancel(ctx, res.ID, 7))
	assert.ErrorIs(t, svc.Cancel(ctx, res.ID, 7), repository.ErrAlreadyCancelled)
}

func TestCancelCompletedReservation(t *testing.T) {
	svc, ledger := newTestService(5, "2026-09-01")
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, 1, "2026-09-01")
	require.NoError(t, err)
	ledger.complete(res.ID)

	assert.ErrorIs(t, svc.Cancel(ctx, res.ID, 7), repository.ErrConflict)
}

func TestBoardingPassValidity(t *testing.T) {
	svc, _ := newTestService(5, "2026-09-01")
	ctx := context.Background()

	today, err := svc.Create(ctx, 7, 1, "2026-09-01")
	require.NoError(t, err)
	future, err := svc.Create(ctx, 7, 1, "2026-09-05")
	require.NoError(t, err)
	past, err := svc.Create(ctx, 7, 1, "2026-08-30")
	require.NoError(t, err)

	pass, err := svc.BoardingPass(ctx, today.ID, 7)
	require.NoError(t, err)
	assert.True(t, pass.Valid, "pass stays valid for the whole service day")
	assert.Equal(t, today.QRCode, pass.QRCode)

	pass, err = svc.BoardingPass(ctx, future.ID, 7)
	require.NoError(t, err)
	assert.True(t, pass.Valid)

	pass, err = svc.BoardingPass(ctx, past.ID, 7)
	require.NoError(t, err)
	assert.False(t, pass.Valid)
	assert.Empty(t, pass.QRCode, "expired pass must not carry a scannable payload")
}

func TestBoardingPassCancelledNeverValid(t *testing.T) {
	svc, _ := newTestService(5, "2026-09-01")
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, 1, "2026-09-03")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, res.ID, 7))

	pass, err := svc.BoardingPass(ctx, res.ID, 7)
	require.NoError(t, err)
	assert.False(t, pass.Valid)
	assert.Empty(t, pass.QRCode)
}

func TestBoardingPassOwnership(t *testing.T) {
	svc, _ := newTestService(5, "2026-09-01")
	ctx := context.Background()

	res, err := svc.Create(ctx, 7, 1, "2026-09-03")
	require.NoError(t, err)

	_, err = svc.BoardingPass(ctx, res.ID, 8)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}
