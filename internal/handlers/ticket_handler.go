package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vet-portal/internal/middleware"
	"vet-portal/internal/services"
)

// TicketHandler serves the caller-facing ticket download and the internal
// payload endpoint read by the ticket gateway.
type TicketHandler struct {
	Proxy    *services.TicketProxy
	Payloads *services.TicketPayloadService
	Logger   *slog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(proxy *services.TicketProxy, payloads *services.TicketPayloadService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{Proxy: proxy, Payloads: payloads, Logger: logger}
}

// TicketPDF handles GET /ticket/:id/pdf.
// @Summary Download the ticket of an appointment
// @Description Redirects the browser to a short-lived download URL of the rendered ticket. Gateway failures are forwarded as-is.
// @Tags tickets
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 302 "Redirect to the presigned ticket URL"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Appointment not found"
// @Failure 500 {object} map[string]interface{} "Ticket service not configured"
// @Failure 502 {object} map[string]interface{} "Redirect without Location"
// @Failure 503 {object} map[string]interface{} "Ticket service unavailable"
// @Router /ticket/{id}/pdf [get]
func (h *TicketHandler) TicketPDF(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, InvalidUuidError)
	}
	caller, _ := middleware.CallerFrom(c)

	resp, err := h.Proxy.Fetch(c.UserContext(), caller, id)
	if err != nil {
		return serviceError(c, err)
	}
	if resp.Redirect() {
		return c.Redirect(resp.Location, fiber.StatusFound)
	}
	if resp.ContentType != "" {
		c.Set(fiber.HeaderContentType, resp.ContentType)
	}
	return c.Status(resp.Status).Send(resp.Body)
}

// InternalTicket handles GET /internal/ticket/:id.
// @Summary Ticket payload for the ticket gateway
// @Description Authorized only by the X-Internal-Secret header.
// @Tags internal
// @Produce json
// @Param id path string true "Appointment ID"
// @Param X-Internal-Secret header string true "Shared secret"
// @Success 200 {object} models.TicketPayload
// @Failure 403 {object} map[string]interface{} "Bad secret"
// @Failure 404 {object} map[string]interface{} "Appointment not found"
// @Router /internal/ticket/{id} [get]
func (h *TicketHandler) InternalTicket(c *fiber.Ctx) error {
	presented := c.Get(services.InternalSecretHeader)
	if !h.Payloads.Authorized(presented) {
		return errorJSON(c, fiber.StatusForbidden, "forbidden")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, InvalidUuidError)
	}
	payload, err := h.Payloads.Payload(c.UserContext(), id, presented)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(payload)
}
