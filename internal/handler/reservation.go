package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/service"
)

// ReservationHandler serves the rider-facing booking endpoints.  All of
// them require an authenticated, approved account.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs the handler.  The service must be
// non-nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc}
}

// Create handles POST /v1/reservations.  The body carries the schedule
// and the service day; the seat itself is implicit (one per rider).
// Responds 201 with the stored reservation, 404 for unknown or disabled
// schedules, 409 when the rider already holds a seat on that departure
// or the vehicle is full.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ScheduleID      uint64 `json:"schedule_id"`
		ReservationDate string `json:"reservation_date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Reservations.Create(c.Request().Context(), userID, body.ScheduleID, body.ReservationDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":               res.ID,
		"schedule_id":      res.ScheduleID,
		"reservation_date": res.ReservationDate,
		"status":           res.Status,
		"qr_code":          res.QRCode,
		"created_at":       res.CreatedAt,
	})
}

// Cancel handles DELETE /v1/reservations/:id.  Only the owner may
// cancel; repeat cancels and completed reservations answer 409.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.Cancel(c.Request().Context(), id, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": "cancelled"})
}

// ListMine handles GET /v1/my-reservations, newest service day first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": items})
}

// BoardingPass handles GET /v1/reservations/:id/pass.  The response
// always includes the validity flag; the QR payload is present only on
// valid passes.
func (h *ReservationHandler) BoardingPass(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	pass, err := h.Reservations.BoardingPass(c.Request().Context(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pass)
}
