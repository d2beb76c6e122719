package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/complaintbox/internal/redis"
	"github.com/victorivanov/complaintbox/internal/service"
)

const submitLimitKeyPrefix = "complaintbox:submit:"

// submitLimitKey is the Redis counter for one client's submissions.
func submitLimitKey(ip string) string {
	return submitLimitKeyPrefix + ip
}

// SubmitRateLimit caps complaint submissions per client IP within window.
// Limited submissions never reach the handler and are counted as
// rate_limited. If Redis cannot be reached the submission goes through.
func SubmitRateLimit(redisClient *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, count, ttlMs, err := redisClient.CheckRateLimit(c.Request().Context(), submitLimitKey(ip), limit, window)
			if err != nil {
				slog.Warn("submission rate limit unavailable, accepting", "ip", ip, "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(int64(limit)-count, 0), 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Duration(ttlMs)*time.Millisecond).Unix(), 10))

			if !allowed {
				complaintsSubmitted.WithLabelValues(resultRateLimited).Inc()
				slog.Info("complaint submission rate limited", "ip", ip, "count", count)
				h.Set("Retry-After", strconv.FormatInt((ttlMs+999)/1000, 10))
				return Error(c, http.StatusTooManyRequests, service.CodeRateLimited,
					"too many complaints submitted, please try again later")
			}
			return next(c)
		}
	}
}
