package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds with a small JSON document so load balancers and
// uptime checks can verify the process is serving.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
