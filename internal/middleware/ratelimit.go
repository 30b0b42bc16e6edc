package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// WindowCounter counts hits of a key within a fixed time window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per caller and window on the routes it
// guards. Counter errors let the request through. A nil counter disables it.
func RateLimit(counter WindowCounter, scope string, limit int, window time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return c.Next()
		}
		who := c.IP()
		if caller, ok := CallerFrom(c); ok && caller.Subject != "" {
			who = caller.Subject
		}
		key := "ratelimit:" + scope + ":" + who

		count, err := counter.IncrWindow(c.UserContext(), key, window)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", "scope", scope, "error", err.Error())
			return c.Next()
		}
		if count > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": true, "message": "too many requests",
			})
		}
		return c.Next()
	}
}
