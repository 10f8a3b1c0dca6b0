package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// BoardingRepo records boarding events (QR scans) and serves the
// attendance history the reward engine scans.  It updates reservation
// status as part of the scan but never touches seat accounting.
type BoardingRepo struct {
	db *sql.DB
}

// NewBoardingRepo returns a BoardingRepo bound to the given database.
func NewBoardingRepo(db *sql.DB) *BoardingRepo { return &BoardingRepo{db: db} }

// MarkBoarded resolves a scanned QR code for the given service day,
// transitions the reservation confirmed -> completed and writes the
// boarding record, all in one transaction.  Errors:
//
//	ErrReservationNotFound – unknown QR payload
//	ErrAlreadyBoarded      – reservation already completed
//	ErrConflict            – cancelled reservation, or scan on the wrong day
func (r *BoardingRepo) MarkBoarded(ctx context.Context, qrCode, serviceDay string, boardedAt time.Time) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin boarding tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var res model.Reservation
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, schedule_id, DATE_FORMAT(reservation_date, '%Y-%m-%d'), status, qr_code, created_at
		 FROM reservations WHERE qr_code = ? FOR UPDATE`,
		qrCode,
	).Scan(&res.ID, &res.UserID, &res.ScheduleID, &res.ReservationDate, &res.Status, &res.QRCode, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation by qr: %w", err)
	}
	switch res.Status {
	case model.ReservationCompleted:
		return nil, ErrAlreadyBoarded
	case model.ReservationCancelled:
		return nil, ErrConflict
	}
	if res.ReservationDate != serviceDay {
		return nil, ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'completed' WHERE id = ?`, res.ID,
	); err != nil {
		return nil, fmt.Errorf("complete reservation: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO boarding_records (reservation_id, boarded_at) VALUES (?, ?)`,
		res.ID, boardedAt.UTC().Format("2006-01-02 15:04:05"),
	); err != nil {
		return nil, fmt.Errorf("insert boarding record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit boarding: %w", err)
	}
	committed = true
	res.Status = model.ReservationCompleted
	return &res, nil
}

// UserBoardingDates holds one rider's distinct boarding service days in
// ascending order.
type UserBoardingDates struct {
	UserID uint64
	Days   []string
}

// BoardingDatesSince returns, per rider, the distinct service days with
// a boarding event strictly after that rider's marker date.  Riders
// without a marker are scanned from the beginning (empty marker sorts
// before every real day).  Days are keyed on the reservation's service
// day, not the scan timestamp, so a scan just after midnight still
// counts for the departure's day.
func (r *BoardingRepo) BoardingDatesSince(ctx context.Context, markers map[uint64]string) ([]UserBoardingDates, error) {
	const q = `SELECT res.user_id, DATE_FORMAT(res.reservation_date, '%Y-%m-%d') AS day
	           FROM boarding_records b
	           JOIN reservations res ON res.id = b.reservation_id
	           GROUP BY res.user_id, day
	           ORDER BY res.user_id, day`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("boarding history: %w", err)
	}
	defer rows.Close()

	var out []UserBoardingDates
	for rows.Next() {
		var userID uint64
		var day string
		if err := rows.Scan(&userID, &day); err != nil {
			return nil, err
		}
		if marker, ok := markers[userID]; ok && day <= marker {
			continue
		}
		if len(out) == 0 || out[len(out)-1].UserID != userID {
			out = append(out, UserBoardingDates{UserID: userID})
		}
		out[len(out)-1].Days = append(out[len(out)-1].Days, day)
	}
	return out, rows.Err()
}
