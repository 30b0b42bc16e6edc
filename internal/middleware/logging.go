package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one JSON line per request with method, path, status and
// duration_ms, plus the caller subject when authenticated.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond),
		}
		if caller, ok := CallerFrom(c); ok {
			attrs = append(attrs, "caller", caller.Subject)
		}
		logger.Info("request", attrs...)
		return err
	}
}
