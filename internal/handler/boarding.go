package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/service"
)

// BoardingHandler serves the on-vehicle scanner.  Restricted to
// operations staff by middleware.
type BoardingHandler struct {
	Boardings *service.BoardingService
}

// NewBoardingHandler constructs the handler.
func NewBoardingHandler(svc *service.BoardingService) *BoardingHandler {
	if svc == nil {
		panic("nil service passed to NewBoardingHandler")
	}
	return &BoardingHandler{Boardings: svc}
}

// Record handles POST /v1/boardings.  The scanner posts the raw QR
// payload; a successful scan completes the reservation and writes the
// boarding record.  Scans for the wrong day, cancelled reservations or
// already-used passes answer 409.
func (h *BoardingHandler) Record(c echo.Context) error {
	var body struct {
		QRCode string `json:"qr_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.QRCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}

	res, err := h.Boardings.RecordBoarding(c.Request().Context(), body.QRCode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id":   res.ID,
		"user_id":          res.UserID,
		"schedule_id":      res.ScheduleID,
		"reservation_date": res.ReservationDate,
		"status":           res.Status,
	})
}
