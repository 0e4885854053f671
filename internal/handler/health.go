package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers /healthz for load balancers and uptime checks.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
