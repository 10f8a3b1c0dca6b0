package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ReservationRepo is the reservation ledger.  It is the only component
// that mutates reservation rows and it owns the two booking invariants:
// at most one live reservation per (user, schedule, service day), and
// never more live reservations per (schedule, service day) than the
// schedule's capacity.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// Create commits a booking for (UserID, ScheduleID, ReservationDate) with
// the prepared QRCode, populating ID, Status and CreatedAt on success.
//
// The duplicate and capacity checks and the insert run in one
// transaction that first locks the schedule row, so concurrent bookings
// for the same departure are serialized: a plain read-then-insert would
// admit more riders than seats under simultaneous requests.  The
// uq_active_booking unique key is the backstop for the duplicate rule;
// a violation racing past the explicit check is mapped back to
// ErrDuplicateReservation.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the schedule row for the duration of the commit.  Every
	// concurrent booking for this schedule queues up here.
	var totalSeats uint32
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT total_seats, is_active FROM schedules WHERE id = ? FOR UPDATE`,
		res.ScheduleID,
	).Scan(&totalSeats, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrScheduleNotFound
	}
	if err != nil {
		return fmt.Errorf("lock schedule: %w", err)
	}
	if !isActive {
		return ErrScheduleNotFound
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM reservations
		     WHERE user_id = ? AND schedule_id = ? AND reservation_date = ? AND status <> 'cancelled')`,
		res.UserID, res.ScheduleID, res.ReservationDate,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return ErrDuplicateReservation
	}

	var taken uint32
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE schedule_id = ? AND reservation_date = ? AND status <> 'cancelled'`,
		res.ScheduleID, res.ReservationDate,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("capacity count: %w", err)
	}
	if taken >= totalSeats {
		return ErrCapacityExceeded
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, schedule_id, reservation_date, status, qr_code)
		 VALUES (?, ?, ?, ?, ?)`,
		res.UserID, res.ScheduleID, res.ReservationDate, model.ReservationConfirmed, res.QRCode,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateReservation
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert id: %w", err)
	}
	res.ID = uint64(id)
	res.Status = model.ReservationConfirmed

	// Query back the row so defaults (created_at) are populated.
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM reservations WHERE id = ?`, res.ID,
	).Scan(&res.CreatedAt)
	if err != nil {
		return fmt.Errorf("read back reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	committed = true
	return nil
}

// Cancel flips a confirmed reservation owned by userID to cancelled,
// which immediately frees one seat for the same departure and day.  It
// returns ErrReservationNotFound, ErrForbidden for someone else's
// reservation, ErrAlreadyCancelled for a repeat cancel, and ErrConflict
// when the reservation has already been boarded.
func (r *ReservationRepo) Cancel(ctx context.Context, reservationID, userID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID uint64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, status FROM reservations WHERE id = ? FOR UPDATE`,
		reservationID,
	).Scan(&ownerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReservationNotFound
	}
	if err != nil {
		return fmt.Errorf("load reservation: %w", err)
	}
	if ownerID != userID {
		return ErrForbidden
	}
	switch status {
	case model.ReservationCancelled:
		return ErrAlreadyCancelled
	case model.ReservationCompleted:
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled' WHERE id = ?`, reservationID,
	); err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}
	committed = true
	return nil
}

// TicketDetail carries everything needed to project a boarding pass for
// one reservation.
type TicketDetail struct {
	ReservationID   uint64
	Status          string
	ReservationDate string
	QRCode          string
	HolderName      string
	RouteName       string
	DepartureTime   string
}

// GetTicketForUser loads the pass projection source for a reservation,
// enforcing ownership.  The holder name falls back to the user's email
// when no full name is on file, matching what is printed on the pass.
func (r *ReservationRepo) GetTicketForUser(ctx context.Context, reservationID, userID uint64) (*TicketDetail, error) {
	// DATE_FORMAT keeps the service day a plain string; parseTime=true
	// would otherwise surface DATE columns as midnight time.Time values.
	const q = `SELECT r.id, r.user_id, r.status, DATE_FORMAT(r.reservation_date, '%Y-%m-%d'), r.qr_code,
	                  u.full_name, u.email, rt.name, s.departure_time
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           JOIN schedules s ON s.id = r.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           WHERE r.id = ?`
	var det TicketDetail
	var ownerID uint64
	var fullName, email sql.NullString
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&det.ReservationID, &ownerID, &det.Status, &det.ReservationDate, &det.QRCode,
		&fullName, &email, &det.RouteName, &det.DepartureTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	switch {
	case fullName.Valid && fullName.String != "":
		det.HolderName = fullName.String
	case email.Valid:
		det.HolderName = email.String
	}
	return &det, nil
}

// ReservationSummary is one row of a rider's reservation list.
type ReservationSummary struct {
	ID              uint64    `json:"id"`
	ScheduleID      uint64    `json:"schedule_id"`
	RouteName       string    `json:"route_name"`
	DepartureTime   string    `json:"departure_time"`
	ReservationDate string    `json:"reservation_date"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListByUser returns the user's reservations with route and departure
// details, most recent service day first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationSummary, error) {
	const q = `SELECT r.id, r.schedule_id, rt.name, s.departure_time,
	                  DATE_FORMAT(r.reservation_date, '%Y-%m-%d'), r.status, r.created_at
	           FROM reservations r
	           JOIN schedules s ON s.id = r.schedule_id
	           JOIN routes rt ON rt.id = s.route_id
	           WHERE r.user_id = ?
	           ORDER BY r.reservation_date DESC, r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]ReservationSummary, 0)
	for rows.Next() {
		var it ReservationSummary
		if err := rows.Scan(&it.ID, &it.ScheduleID, &it.RouteName, &it.DepartureTime,
			&it.ReservationDate, &it.Status, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountActive returns the number of non-cancelled reservations for a
// departure on a service day.  Used for remaining-seat displays; the
// authoritative check happens inside Create's transaction.
func (r *ReservationRepo) CountActive(ctx context.Context, scheduleID uint64, date string) (uint32, error) {
	var n uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE schedule_id = ? AND reservation_date = ? AND status <> 'cancelled'`,
		scheduleID, date,
	).Scan(&n)
	return n, err
}
