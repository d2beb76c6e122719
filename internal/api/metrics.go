package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultAccepted    = "accepted"
	resultRejected    = "rejected"
	resultFailed      = "failed"
	resultRateLimited = "rate_limited"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintbox_http_requests_total",
			Help: "HTTP requests handled, by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "complaintbox_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	complaintsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaintbox_submissions_total",
			Help: "Complaint submissions by result (accepted, rejected, failed).",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware records request counts and latency. Routes are labelled
// by their registered pattern, so label cardinality stays bounded.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
