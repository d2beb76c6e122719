package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// isoMillis matches the millisecond ISO 8601 form browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
}

// Health handles GET /health.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{OK: true, Time: time.Now().UTC().Format(isoMillis)})
}
