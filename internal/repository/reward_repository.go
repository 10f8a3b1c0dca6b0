package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/minbok/shuttle-reservation/internal/model"
)

// RewardRepo owns the rewards table.  Rows are only ever created by the
// reward engine; redemption happens in an external system that flips
// is_used.
type RewardRepo struct {
	db *sql.DB
}

// NewRewardRepo returns a RewardRepo bound to the given database.
func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{db: db} }

// Create inserts a freshly issued coupon and populates its ID.
func (r *RewardRepo) Create(ctx context.Context, rw *model.Reward) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO rewards (user_id, coupon_code, streak_ended_on, expires_at)
		 VALUES (?, ?, ?, ?)`,
		rw.UserID, rw.CouponCode, rw.StreakEndedOn, rw.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rw.ID = uint64(id)
	return nil
}

// StreakMarkers returns each rider's most recent streak_ended_on date.
// The reward engine only considers boarding activity after this marker,
// which is what keeps re-runs over unchanged history from issuing the
// same streak twice.
func (r *RewardRepo) StreakMarkers(ctx context.Context) (map[uint64]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, DATE_FORMAT(MAX(streak_ended_on), '%Y-%m-%d') FROM rewards GROUP BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("streak markers: %w", err)
	}
	defer rows.Close()
	markers := make(map[uint64]string)
	for rows.Next() {
		var userID uint64
		var day string
		if err := rows.Scan(&userID, &day); err != nil {
			return nil, err
		}
		markers[userID] = day
	}
	return markers, rows.Err()
}

// ListByUser returns a rider's coupons, newest first.
func (r *RewardRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reward, error) {
	const q = `SELECT id, user_id, coupon_code, DATE_FORMAT(streak_ended_on, '%Y-%m-%d'),
	                  expires_at, is_used, created_at
	           FROM rewards WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Reward, 0)
	for rows.Next() {
		var rw model.Reward
		var expiresAt, createdAt time.Time
		if err := rows.Scan(&rw.ID, &rw.UserID, &rw.CouponCode, &rw.StreakEndedOn,
			&expiresAt, &rw.IsUsed, &createdAt); err != nil {
			return nil, err
		}
		rw.ExpiresAt = expiresAt.UTC()
		rw.CreatedAt = createdAt.UTC()
		items = append(items, rw)
	}
	return items, rows.Err()
}
