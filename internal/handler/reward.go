package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/reward"
)

// RewardHandler exposes a rider's coupons and lets operations staff
// trigger an issuance sweep outside the scheduled job.
type RewardHandler struct {
	RewardRepo *repository.RewardRepo
	Engine     *reward.Engine
}

// NewRewardHandler constructs the handler.
func NewRewardHandler(rewards *repository.RewardRepo, engine *reward.Engine) *RewardHandler {
	if rewards == nil || engine == nil {
		panic("nil dependency passed to NewRewardHandler")
	}
	return &RewardHandler{RewardRepo: rewards, Engine: engine}
}

type rewardView struct {
	CouponCode    string `json:"coupon_code"`
	StreakEndedOn string `json:"streak_ended_on"`
	ExpiresAt     string `json:"expires_at"`
	IsUsed        bool   `json:"is_used"`
}

// ListMine handles GET /v1/my-rewards, newest first.
func (h *RewardHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.RewardRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]rewardView, 0, len(items))
	for _, rw := range items {
		out = append(out, rewardView{
			CouponCode:    rw.CouponCode,
			StreakEndedOn: rw.StreakEndedOn,
			ExpiresAt:     rw.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
			IsUsed:        rw.IsUsed,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rewards": out})
}

// RunEngine handles POST /v1/admin/rewards/run.  The sweep is
// idempotent, so triggering it repeatedly never double-issues; the
// report says how many coupons this run created.
func (h *RewardHandler) RunEngine(c echo.Context) error {
	report, err := h.Engine.Run(c.Request().Context())
	if err != nil {
		// Partial progress is still reported; the committed coupons stand.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "issuance interrupted, rerun to resume",
			"report": report,
		})
	}
	return c.JSON(http.StatusOK, report)
}
