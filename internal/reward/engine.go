// Package reward implements the batch engine that issues loyalty
// coupons to riders who board on consecutive service days.  It only
// reads boarding history and writes to the rewards store; reservation
// rows are never touched from here.
package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/utils"
)

// DefaultThreshold is the number of consecutive boarding days that
// earns a coupon.
const DefaultThreshold = 5

// CouponTTL is how long an issued coupon stays redeemable.
const CouponTTL = 30 * 24 * time.Hour

// BoardingHistory supplies per-rider boarding days after each rider's
// last rewarded streak.
type BoardingHistory interface {
	BoardingDatesSince(ctx context.Context, markers map[uint64]string) ([]repository.UserBoardingDates, error)
}

// RewardStore persists coupons and the per-rider streak markers derived
// from them.
type RewardStore interface {
	StreakMarkers(ctx context.Context) (map[uint64]string, error)
	Create(ctx context.Context, rw *model.Reward) error
}

// Report summarizes one issuance run.  When Run returns an error the
// counts still reflect the work completed before the failure.
type Report struct {
	Threshold    int `json:"threshold"`
	UsersScanned int `json:"users_scanned"`
	Issued       int `json:"issued"`
}

// Engine is the batch reward issuer.  An external scheduler (or the
// admin endpoint) calls Run on a fixed cadence.
type Engine struct {
	history   BoardingHistory
	rewards   RewardStore
	clk       clock.Clock
	threshold int
}

// NewEngine wires the issuer.  A non-positive threshold falls back to
// DefaultThreshold.
func NewEngine(history BoardingHistory, rewards RewardStore, clk clock.Clock, threshold int) *Engine {
	if history == nil || rewards == nil || clk == nil {
		panic("nil dependency passed to reward.NewEngine")
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{history: history, rewards: rewards, clk: clk, threshold: threshold}
}

// Run scans boarding history and issues one coupon per rider whose
// unrewarded activity contains a run of at least threshold consecutive
// service days.  The issued reward records the run's last day as the
// streak marker, so a second Run over unchanged history issues nothing.
// The run aborts on the first storage failure; the returned report
// carries how many coupons were issued before the abort.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	report := Report{Threshold: e.threshold}

	markers, err := e.rewards.StreakMarkers(ctx)
	if err != nil {
		return report, fmt.Errorf("load streak markers: %w", err)
	}
	users, err := e.history.BoardingDatesSince(ctx, markers)
	if err != nil {
		return report, fmt.Errorf("load boarding history: %w", err)
	}

	now := e.clk.Now()
	for _, u := range users {
		report.UsersScanned++
		end, ok := qualifyingRunEnd(u.Days, e.threshold)
		if !ok {
			continue
		}
		code, err := utils.NewCouponCode()
		if err != nil {
			return report, fmt.Errorf("generate coupon: %w", err)
		}
		rw := &model.Reward{
			UserID:        u.UserID,
			CouponCode:    code,
			StreakEndedOn: end,
			ExpiresAt:     now.Add(CouponTTL),
		}
		if err := e.rewards.Create(ctx, rw); err != nil {
			return report, fmt.Errorf("issue reward for user %d: %w", u.UserID, err)
		}
		report.Issued++
	}
	return report, nil
}

// qualifyingRunEnd scans sorted distinct service days for the first run
// of at least threshold consecutive calendar days and returns the last
// day of that maximal run.  Extending the marker to the run's end keeps
// the tail of a long streak from qualifying again on the next scan.
func qualifyingRunEnd(days []string, threshold int) (string, bool) {
	runLen := 0
	for i, day := range days {
		if i == 0 || day != nextDay(days[i-1]) {
			if runLen >= threshold {
				return days[i-1], true
			}
			runLen = 1
			continue
		}
		runLen++
	}
	if runLen >= threshold {
		return days[len(days)-1], true
	}
	return "", false
}

func nextDay(day string) string {
	t, err := time.Parse(clock.ServiceDayFormat, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(clock.ServiceDayFormat)
}
