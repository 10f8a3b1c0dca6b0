package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds 200 while the process is up.  Used by the load
// balancer; intentionally does not touch the database.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
