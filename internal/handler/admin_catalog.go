package handler

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// departure_time is stored in a TIME column; accept HH:MM or HH:MM:SS.
var departureTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

// CatalogHandler serves the operations-admin CRUD for routes, stops and
// schedules.  Every endpoint here sits behind RequireRole(OPERATIONS_ADMIN).
type CatalogHandler struct {
	RouteRepo    *repository.RouteRepo
	ScheduleRepo *repository.ScheduleRepo
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(routes *repository.RouteRepo, schedules *repository.ScheduleRepo) *CatalogHandler {
	if routes == nil || schedules == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{RouteRepo: routes, ScheduleRepo: schedules}
}

// CreateRoute handles POST /v1/admin/routes.
func (h *CatalogHandler) CreateRoute(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	rt := &model.Route{Name: body.Name, Description: body.Description}
	if err := h.RouteRepo.Create(c.Request().Context(), rt); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rt.ID, "name": rt.Name})
}

// UpdateRoute handles PUT /v1/admin/routes/:id.
func (h *CatalogHandler) UpdateRoute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	rt := &model.Route{ID: id, Name: body.Name, Description: body.Description}
	if err := h.RouteRepo.Update(c.Request().Context(), rt); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": body.Name})
}

// DeleteRoute handles DELETE /v1/admin/routes/:id.  Routes with any
// reservation history answer 409; retire their schedules instead.
func (h *CatalogHandler) DeleteRoute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	if err := h.RouteRepo.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceStops handles PUT /v1/admin/routes/:id/stops.  The full stop
// list is replaced atomically; order follows the array.
func (h *CatalogHandler) ReplaceStops(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var body struct {
		Stops []struct {
			Name      string   `json:"name"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"stops"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	stops := make([]model.Stop, 0, len(body.Stops))
	for _, s := range body.Stops {
		if s.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every stop needs a name"})
		}
		stops = append(stops, model.Stop{Name: s.Name, Latitude: s.Latitude, Longitude: s.Longitude})
	}
	if err := h.RouteRepo.ReplaceStops(c.Request().Context(), id, stops); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"route_id": id, "stop_count": len(stops)})
}

// ListSchedules handles GET /v1/admin/routes/:id/schedules, including
// deactivated slots operations staff still need to see.
func (h *CatalogHandler) ListSchedules(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	items, err := h.ScheduleRepo.ListByRoute(c.Request().Context(), id, false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"route_id": id, "schedules": items})
}

// CreateSchedule handles POST /v1/admin/routes/:id/schedules.  Capacity
// is fixed at creation; there is deliberately no resize endpoint.
func (h *CatalogHandler) CreateSchedule(c echo.Context) error {
	routeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var body struct {
		DepartureTime string `json:"departure_time"`
		TotalSeats    uint32 `json:"total_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !departureTimeRe.MatchString(body.DepartureTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time must be HH:MM or HH:MM:SS"})
	}
	if body.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}
	s := &model.Schedule{
		RouteID:       routeID,
		DepartureTime: body.DepartureTime,
		TotalSeats:    body.TotalSeats,
		IsActive:      true,
	}
	if err := h.ScheduleRepo.Create(c.Request().Context(), s); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": s.ID, "route_id": routeID})
}

// SetScheduleActive handles PATCH /v1/admin/schedules/:id/active.
// Deactivation stops new bookings without touching existing ones.
func (h *CatalogHandler) SetScheduleActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil || body.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active is required"})
	}
	if err := h.ScheduleRepo.SetActive(c.Request().Context(), id, *body.Active); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": *body.Active})
}

// DeleteSchedule handles DELETE /v1/admin/schedules/:id.  Only slots
// with no reservation history may be deleted.
func (h *CatalogHandler) DeleteSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	if err := h.ScheduleRepo.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
