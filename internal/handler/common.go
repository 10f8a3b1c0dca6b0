// Package handler contains the HTTP layer.  Handlers bind and validate
// requests, call into the service/repository layers and translate the
// sentinel errors into status codes.  Authentication and role checks
// happen in middleware before any handler runs.
package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
	"github.com/minbok/shuttle-reservation/internal/service"
)

// getUserID extracts the authenticated user's numeric ID from the
// context.  The JWT "sub" claim arrives as a JSON number (float64) or a
// string depending on the issuer, so both are accepted.
func getUserID(c echo.Context) (uint64, error) {
	if u, ok := c.Get("current_user").(*model.User); ok && u != nil {
		return u.ID, nil
	}
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	case int64:
		if v > 0 {
			return uint64(v), nil
		}
	}
	return 0, fmt.Errorf("no user id in context")
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// writeError maps the service/repository sentinel errors onto HTTP
// responses.  Unknown errors become an opaque 500 so storage details
// never leak to clients.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	case errors.Is(err, repository.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	case errors.Is(err, repository.ErrDuplicateReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a reservation for this departure"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no seats left"})
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
	case errors.Is(err, repository.ErrAlreadyBoarded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "pass already used"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict with current state"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "temporary failure, retry later"})
	}
}
