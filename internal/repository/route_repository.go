package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// RouteRepo maintains routes and their ordered stops.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo returns a RouteRepo bound to the given database.
func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// List returns all routes ordered by name.
func (r *RouteRepo) List(ctx context.Context) ([]model.Route, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM routes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Route, 0)
	for rows.Next() {
		var rt model.Route
		var desc sql.NullString
		if err := rows.Scan(&rt.ID, &rt.Name, &desc, &rt.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			rt.Description = &d
		}
		items = append(items, rt)
	}
	return items, rows.Err()
}

// GetByID loads one route.  sql.ErrNoRows passes through for callers to
// translate into a 404.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (*model.Route, error) {
	var rt model.Route
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM routes WHERE id = ?`, id).
		Scan(&rt.ID, &rt.Name, &desc, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rt.Description = &d
	}
	return &rt, nil
}

// Create inserts a route and populates its ID.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO routes (name, description) VALUES (?, ?)`, rt.Name, rt.Description)
	if err != nil {
		return fmt.Errorf("insert route: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// Update renames a route and replaces its description.
func (r *RouteRepo) Update(ctx context.Context, rt *model.Route) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE routes SET name = ?, description = ? WHERE id = ?`,
		rt.Name, rt.Description, rt.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM routes WHERE id = ?)`, rt.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes a route.  Routes whose schedules have reservation
// history return ErrConflict; stops and unbooked schedules cascade.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	var hasReservations bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM reservations res
		     JOIN schedules s ON s.id = res.schedule_id
		     WHERE s.route_id = ?)`, id).Scan(&hasReservations)
	if err != nil {
		return err
	}
	if hasReservations {
		return ErrConflict
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListStops returns a route's stops in boarding order.
func (r *RouteRepo) ListStops(ctx context.Context, routeID uint64) ([]model.Stop, error) {
	const q = `SELECT id, route_id, name, stop_order, latitude, longitude, created_at
	           FROM stops WHERE route_id = ? ORDER BY stop_order`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Stop, 0)
	for rows.Next() {
		var s model.Stop
		var lat, lng sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.RouteID, &s.Name, &s.StopOrder, &lat, &lng, &s.CreatedAt); err != nil {
			return nil, err
		}
		if lat.Valid {
			v := lat.Float64
			s.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			s.Longitude = &v
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ReplaceStops swaps a route's stop list for the provided one in a
// single transaction.  Stop order follows slice order starting at 1.
func (r *RouteRepo) ReplaceStops(ctx context.Context, routeID uint64, stops []model.Stop) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM routes WHERE id = ?)`, routeID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stops WHERE route_id = ?`, routeID); err != nil {
		return fmt.Errorf("clear stops: %w", err)
	}
	for i, s := range stops {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stops (route_id, name, stop_order, latitude, longitude) VALUES (?, ?, ?, ?, ?)`,
			routeID, s.Name, i+1, s.Latitude, s.Longitude,
		); err != nil {
			return fmt.Errorf("insert stop: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
