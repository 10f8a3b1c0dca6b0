// Package router wires handlers, middleware and route groups onto the
// Echo instance.  Route registration is split by audience: public
// browse, rider, and the two admin surfaces.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/minbok/shuttle-reservation/internal/config"
	"github.com/minbok/shuttle-reservation/internal/handler"
	"github.com/minbok/shuttle-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints behind
// the response cache.  Guests can inspect routes, stops and seat
// availability before signing in.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.NewRedisCache(cacheCfg, rdb))
	g.GET("/routes", b.ListRoutes)
	g.GET("/routes/:id/schedules", b.ListSchedules)
}
