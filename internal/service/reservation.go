// Package service holds the reservation engine: the only code path that
// may mutate the reservation ledger.  Handlers stay thin and delegate
// the booking rules here so they can be exercised without HTTP.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/queue"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// ErrInvalidInput is returned for malformed booking requests (zero ids,
// unparseable service day) before any store is consulted.
var ErrInvalidInput = errors.New("invalid input")

var tracer = otel.Tracer("github.com/minbok/shuttle-reservation/internal/service")

// Topics every reservation change invalidates: the public route listing
// and the per-route schedule/seat view.
var invalidationTopics = []string{
	queue.TopicForPath("/v1/routes"),
	queue.TopicForPath("/v1/routes/:id/schedules"),
}

// ReservationLedger is the mutable store of reservations.  The SQL
// implementation (repository.ReservationRepo) enforces the duplicate
// and capacity invariants atomically inside Create; any substitute must
// give the same guarantee under concurrent calls.
type ReservationLedger interface {
	Create(ctx context.Context, res *model.Reservation) error
	Cancel(ctx context.Context, reservationID, userID uint64) error
	GetTicketForUser(ctx context.Context, reservationID, userID uint64) (*repository.TicketDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationSummary, error)
}

// ScheduleCatalog is the read-only schedule reference data.
type ScheduleCatalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
}

// ReservationService validates and commits bookings, cancels them and
// projects boarding passes.  It performs no parallel work itself; the
// concurrency concern is many service calls racing on one departure,
// which the ledger serializes.
type ReservationService struct {
	ledger   ReservationLedger
	catalog  ScheduleCatalog
	notifier Notifier
	clk      clock.Clock
}

// NewReservationService wires the engine.  All dependencies are required.
func NewReservationService(ledger ReservationLedger, catalog ScheduleCatalog, notifier Notifier, clk clock.Clock) *ReservationService {
	if ledger == nil || catalog == nil || notifier == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{ledger: ledger, catalog: catalog, notifier: notifier, clk: clk}
}

// Create books one seat on the schedule for the given service day.
//
// Returns ErrInvalidInput, repository.ErrScheduleNotFound,
// repository.ErrDuplicateReservation or repository.ErrCapacityExceeded;
// anything else is a storage fault.  The schedule lookup here is a
// snapshot read for early rejection; the ledger re-checks everything
// under its own lock, so a stale snapshot can never oversell.
func (s *ReservationService) Create(ctx context.Context, userID, scheduleID uint64, date string) (*model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "reservation.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("schedule_id", int64(scheduleID)),
		attribute.String("reservation_date", date),
	)

	if userID == 0 || scheduleID == 0 || !clock.ValidServiceDay(date) {
		return nil, ErrInvalidInput
	}
	sched, err := s.catalog.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.IsActive {
		return nil, repository.ErrScheduleNotFound
	}

	res := &model.Reservation{
		UserID:          userID,
		ScheduleID:      scheduleID,
		ReservationDate: date,
		QRCode:          uuid.NewString(),
	}
	if err := s.ledger.Create(ctx, res); err != nil {
		return nil, err
	}

	s.notifier.ReservationChanged(ctx, queue.ReservationChangedEvent{
		Action:          queue.ActionCreated,
		ReservationID:   res.ID,
		UserID:          res.UserID,
		ScheduleID:      res.ScheduleID,
		ReservationDate: res.ReservationDate,
		Topics:          invalidationTopics,
		OccurredAt:      s.clk.Now().Format(time.RFC3339),
	})
	return res, nil
}

// Cancel releases the caller's reservation.  A repeat cancel returns
// repository.ErrAlreadyCancelled rather than succeeding silently, so
// clients can tell a stale button press from a real state change.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, userID uint64) error {
	ctx, span := tracer.Start(ctx, "reservation.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("reservation_id", int64(reservationID)))

	if reservationID == 0 || userID == 0 {
		return ErrInvalidInput
	}
	if err := s.ledger.Cancel(ctx, reservationID, userID); err != nil {
		return err
	}
	s.notifier.ReservationChanged(ctx, queue.ReservationChangedEvent{
		Action:        queue.ActionCancelled,
		ReservationID: reservationID,
		UserID:        userID,
		Topics:        invalidationTopics,
		OccurredAt:    s.clk.Now().Format(time.RFC3339),
	})
	return nil
}

// BoardingPass projects the time-boxed credential for a reservation.
// Validity is service-day granular: a pass for today stays valid all
// day even after the departure time has passed.  The QR payload is only
// attached while the pass is valid.
func (s *ReservationService) BoardingPass(ctx context.Context, reservationID, userID uint64) (*model.BoardingPass, error) {
	det, err := s.ledger.GetTicketForUser(ctx, reservationID, userID)
	if err != nil {
		return nil, err
	}
	pass := &model.BoardingPass{
		ReservationID:   det.ReservationID,
		HolderName:      det.HolderName,
		RouteName:       det.RouteName,
		DepartureTime:   det.DepartureTime,
		ReservationDate: det.ReservationDate,
	}
	// Service days in YYYY-MM-DD form compare correctly as strings.
	if det.Status == model.ReservationConfirmed && det.ReservationDate >= s.clk.Today() {
		pass.Valid = true
		pass.QRCode = det.QRCode
	}
	return pass, nil
}

// ListMine returns the caller's reservations, newest service day first.
func (s *ReservationService) ListMine(ctx context.Context, userID uint64) ([]repository.ReservationSummary, error) {
	return s.ledger.ListByUser(ctx, userID)
}
