package model

import "time"

// Reward is a loyalty coupon issued by the batch engine when a rider
// boards on enough consecutive service days.  StreakEndedOn records the
// last day of the qualifying streak; the engine only scans boarding
// activity after that marker, which is what makes re-runs idempotent.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – rider the coupon belongs to.
//  CouponCode    – unique redeemable code ("REWARD-..." form).
//  StreakEndedOn – last service day of the rewarded streak.
//  ExpiresAt     – issuance time + 30 days.
//  IsUsed        – set by the (external) redemption flow.
//  CreatedAt     – issuance timestamp.
type Reward struct {
	ID            uint64    // rewards.id
	UserID        uint64    // rewards.user_id
	CouponCode    string    // rewards.coupon_code
	StreakEndedOn string    // rewards.streak_ended_on (DATE)
	ExpiresAt     time.Time // rewards.expires_at
	IsUsed        bool      // rewards.is_used
	CreatedAt     time.Time // rewards.created_at
}
