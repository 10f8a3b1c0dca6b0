package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// ScheduleRepo provides the schedule catalog: recurring departure slots
// read by the booking engine and maintained by operations staff.
// Capacity is immutable after creation; concurrent schedule edits never
// race with in-flight bookings on anything other than is_active.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// GetByID loads one schedule.  Returns ErrScheduleNotFound for unknown ids.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT id, route_id, departure_time, total_seats, is_active, created_at
	           FROM schedules WHERE id = ?`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.RouteID, &s.DepartureTime, &s.TotalSeats, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByRoute returns a route's schedules ordered by departure time.
// When activeOnly is set, disabled slots are filtered out.
func (r *ScheduleRepo) ListByRoute(ctx context.Context, routeID uint64, activeOnly bool) ([]model.Schedule, error) {
	q := `SELECT id, route_id, departure_time, total_seats, is_active, created_at
	      FROM schedules WHERE route_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY departure_time`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Schedule, 0)
	for rows.Next() {
		var s model.Schedule
		if err := rows.Scan(&s.ID, &s.RouteID, &s.DepartureTime, &s.TotalSeats, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Create inserts a new departure slot and populates its ID.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO schedules (route_id, departure_time, total_seats, is_active)
		 VALUES (?, ?, ?, ?)`,
		s.RouteID, s.DepartureTime, s.TotalSeats, s.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// SetActive toggles whether the slot is bookable.  Existing reservations
// are untouched; deactivation only stops new bookings.
func (r *ScheduleRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when the flag already has the desired
		// value, so double-check existence before reporting not found.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schedules WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrScheduleNotFound
		}
	}
	return nil
}

// Delete removes a slot that has never been booked.  Slots with any
// reservation history return ErrConflict; deactivate those instead.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	var hasReservations bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE schedule_id = ?)`, id).Scan(&hasReservations); err != nil {
		return err
	}
	if hasReservations {
		return ErrConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
