package service

import (
	"context"
	"time"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/queue"
)

// BoardingRecorder is the store side of a QR scan.
type BoardingRecorder interface {
	MarkBoarded(ctx context.Context, qrCode, serviceDay string, boardedAt time.Time) (*model.Reservation, error)
}

// BoardingService turns a QR scan into a completed reservation plus a
// boarding record.  Scans are accepted only on the reservation's own
// service day.
type BoardingService struct {
	recorder BoardingRecorder
	notifier Notifier
	clk      clock.Clock
}

// NewBoardingService wires the scan flow.
func NewBoardingService(recorder BoardingRecorder, notifier Notifier, clk clock.Clock) *BoardingService {
	if recorder == nil || notifier == nil || clk == nil {
		panic("nil dependency passed to NewBoardingService")
	}
	return &BoardingService{recorder: recorder, notifier: notifier, clk: clk}
}

// RecordBoarding resolves the scanned payload and completes the
// reservation.  Errors pass through from the recorder:
// ErrReservationNotFound, ErrAlreadyBoarded, ErrConflict.
func (s *BoardingService) RecordBoarding(ctx context.Context, qrCode string) (*model.Reservation, error) {
	if qrCode == "" {
		return nil, ErrInvalidInput
	}
	res, err := s.recorder.MarkBoarded(ctx, qrCode, s.clk.Today(), s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.notifier.ReservationChanged(ctx, queue.ReservationChangedEvent{
		Action:          queue.ActionBoarded,
		ReservationID:   res.ID,
		UserID:          res.UserID,
		ScheduleID:      res.ScheduleID,
		ReservationDate: res.ReservationDate,
		Topics:          invalidationTopics,
		OccurredAt:      s.clk.Now().Format(time.RFC3339),
	})
	return res, nil
}
