package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
	"vet-portal/internal/services"
)

const InvalidUuidError = "invalid UUID"
const AppointmentNotFoundError = "appointment not found"

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrTicketUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrRedirectWithoutLocation):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": true, "message": message,
	})
}

func serviceError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if errors.Is(err, models.ErrNotFound) {
		message = AppointmentNotFoundError
	}
	return errorJSON(c, status, message)
}
