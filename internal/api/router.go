package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/victorivanov/complaintbox/internal/redis"
)

// Dependencies holds handler instances and optional infrastructure for route wiring.
type Dependencies struct {
	Complaints *ComplaintHandler

	// Redis enables submission rate limiting when non-nil.
	Redis           *redis.Client
	SubmitRateLimit int
}

// SetupRouter registers all routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	e.GET("/health", Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var submitMw []echo.MiddlewareFunc
	if deps.Redis != nil {
		submitMw = append(submitMw, SubmitRateLimit(deps.Redis, deps.SubmitRateLimit, time.Minute))
	}

	e.POST("/submit-complaint", deps.Complaints.Submit, submitMw...)
	e.GET("/complaints", deps.Complaints.List)
}
