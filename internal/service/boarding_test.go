package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/queue"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// fakeRecorder enforces the scan rules the SQL recorder enforces.
type fakeRecorder struct {
	byQR map[string]*model.Reservation
}

func (f *fakeRecorder) MarkBoarded(_ context.Context, qrCode, serviceDay string, _ time.Time) (*model.Reservation, error) {
	r, ok := f.byQR[qrCode]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	switch r.Status {
	case model.ReservationCompleted:
		return nil, repository.ErrAlreadyBoarded
	case model.ReservationCancelled:
		return nil, repository.ErrConflict
	}
	if r.ReservationDate != serviceDay {
		return nil, repository.ErrConflict
	}
	r.Status = model.ReservationCompleted
	return r, nil
}

// captureNotifier remembers the last published event.
type captureNotifier struct {
	events []queue.ReservationChangedEvent
}

func (n *captureNotifier) ReservationChanged(_ context.Context, ev queue.ReservationChangedEvent) {
	n.events = append(n.events, ev)
}

func TestRecordBoarding(t *testing.T) {
	day, _ := time.Parse(clock.ServiceDayFormat, "2026-09-01")
	recorder := &fakeRecorder{byQR: map[string]*model.Reservation{
		"qr-today": {ID: 1, UserID: 7, ScheduleID: 1, ReservationDate: "2026-09-01", Status: model.ReservationConfirmed},
	}}
	notifier := &captureNotifier{}
	svc := NewBoardingService(recorder, notifier, clock.Fixed{T: day.Add(8 * time.Hour)})

	res, err := svc.RecordBoarding(context.Background(), "qr-today")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, res.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, queue.ActionBoarded, notifier.events[0].Action)
	assert.Equal(t, uint64(1), notifier.events[0].ReservationID)
}

func TestRecordBoardingRejections(t *testing.T) {
	day, _ := time.Parse(clock.ServiceDayFormat, "2026-09-01")
	recorder := &fakeRecorder{byQR: map[string]*model.Reservation{
		"qr-tomorrow":  {ID: 2, UserID: 7, ReservationDate: "2026-09-02", Status: model.ReservationConfirmed},
		"qr-cancelled": {ID: 3, UserID: 7, ReservationDate: "2026-09-01", Status: model.ReservationCancelled},
		"qr-used":      {ID: 4, UserID: 7, ReservationDate: "2026-09-01", Status: model.ReservationCompleted},
	}}
	notifier := &captureNotifier{}
	svc := NewBoardingService(recorder, notifier, clock.Fixed{T: day.Add(8 * time.Hour)})
	ctx := context.Background()

	_, err := svc.RecordBoarding(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordBoarding(ctx, "qr-unknown")
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)

	_, err = svc.RecordBoarding(ctx, "qr-tomorrow")
	assert.ErrorIs(t, err, repository.ErrConflict, "a pass is only scannable on its own service day")

	_, err = svc.RecordBoarding(ctx, "qr-cancelled")
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = svc.RecordBoarding(ctx, "qr-used")
	assert.ErrorIs(t, err, repository.ErrAlreadyBoarded)

	assert.Empty(t, notifier.events, "rejected scans must not publish events")
}
