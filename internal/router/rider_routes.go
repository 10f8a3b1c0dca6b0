package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/minbok/shuttle-reservation/internal/config"
	"github.com/minbok/shuttle-reservation/internal/handler"
	"github.com/minbok/shuttle-reservation/internal/middleware"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// RegisterRider registers the booking endpoints.  Every role may book a
// seat, but only approved accounts get past RequireApproved, and the
// token bucket throttles booking bursts.
func RegisterRider(
	e *echo.Echo,
	res *handler.ReservationHandler,
	rw *handler.RewardHandler,
	users *repository.UserRepo,
	jwtSecret string,
	rlCfg config.RateLimitConfig,
	rdb *redis.Client,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireApproved(users),
		middleware.NewTokenBucket(rlCfg, rdb),
	)
	g.POST("/reservations", res.Create)
	g.DELETE("/reservations/:id", res.Cancel)
	g.GET("/reservations/:id/pass", res.BoardingPass)
	g.GET("/my-reservations", res.ListMine)
	g.GET("/my-rewards", rw.ListMine)
}
