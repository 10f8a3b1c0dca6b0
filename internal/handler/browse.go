package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/clock"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// BrowseHandler serves the read-only catalog: routes with their stops
// and the departure slots of a route, optionally with live seat
// availability for one service day.  These endpoints sit behind the
// response cache.
type BrowseHandler struct {
	RouteRepo       *repository.RouteRepo
	ScheduleRepo    *repository.ScheduleRepo
	ReservationRepo *repository.ReservationRepo
}

// NewBrowseHandler constructs the handler.  All repositories must be
// non-nil.
func NewBrowseHandler(routes *repository.RouteRepo, schedules *repository.ScheduleRepo, reservations *repository.ReservationRepo) *BrowseHandler {
	if routes == nil || schedules == nil || reservations == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{RouteRepo: routes, ScheduleRepo: schedules, ReservationRepo: reservations}
}

type routeView struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Stops       []stopView `json:"stops"`
}

type stopView struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	StopOrder uint32   `json:"stop_order"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ListRoutes handles GET /v1/routes: every route with its stops in
// boarding order.
func (h *BrowseHandler) ListRoutes(c echo.Context) error {
	ctx := c.Request().Context()
	routes, err := h.RouteRepo.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]routeView, 0, len(routes))
	for _, rt := range routes {
		stops, err := h.RouteRepo.ListStops(ctx, rt.ID)
		if err != nil {
			return writeError(c, err)
		}
		rv := routeView{ID: rt.ID, Name: rt.Name, Description: rt.Description, Stops: make([]stopView, 0, len(stops))}
		for _, s := range stops {
			rv.Stops = append(rv.Stops, stopView{
				ID: s.ID, Name: s.Name, StopOrder: s.StopOrder,
				Latitude: s.Latitude, Longitude: s.Longitude,
			})
		}
		out = append(out, rv)
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": out})
}

type scheduleView struct {
	ID            uint64  `json:"id"`
	DepartureTime string  `json:"departure_time"`
	TotalSeats    uint32  `json:"total_seats"`
	SeatsLeft     *uint32 `json:"seats_left,omitempty"`
}

// ListSchedules handles GET /v1/routes/:id/schedules.  Only active
// slots are listed.  With ?date=YYYY-MM-DD each slot also reports
// seats_left for that service day; this count is advisory, the booking
// transaction is what actually enforces capacity.
func (h *BrowseHandler) ListSchedules(c echo.Context) error {
	routeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	date := c.QueryParam("date")
	if date != "" && !clock.ValidServiceDay(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	if _, err := h.RouteRepo.GetByID(ctx, routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return writeError(c, err)
	}
	schedules, err := h.ScheduleRepo.ListByRoute(ctx, routeID, true)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]scheduleView, 0, len(schedules))
	for _, s := range schedules {
		sv := scheduleView{ID: s.ID, DepartureTime: s.DepartureTime, TotalSeats: s.TotalSeats}
		if date != "" {
			taken, err := h.ReservationRepo.CountActive(ctx, s.ID, date)
			if err != nil {
				return writeError(c, err)
			}
			left := uint32(0)
			if taken < s.TotalSeats {
				left = s.TotalSeats - taken
			}
			sv.SeatsLeft = &left
		}
		out = append(out, sv)
	}
	resp := echo.Map{"route_id": routeID, "schedules": out}
	if date != "" {
		resp["date"] = date
	}
	return c.JSON(http.StatusOK, resp)
}
