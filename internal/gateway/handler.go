package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vet-portal/internal/metrics"
	"vet-portal/internal/models"
	"vet-portal/internal/services"
)

// PayloadSource provides the data printed on a ticket.
type PayloadSource interface {
	Payload(ctx context.Context, id uuid.UUID) (*models.TicketPayload, error)
}

// TicketStore keeps rendered tickets and hands out download links.
type TicketStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Handler renders tickets on demand and redirects to their download URL.
type Handler struct {
	source   PayloadSource
	renderer *Renderer
	store    TicketStore
	secret   string
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler creates a gateway Handler. Links expire after ttl.
func NewHandler(source PayloadSource, renderer *Renderer, store TicketStore, secret string, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Handler{
		source:   source,
		renderer: renderer,
		store:    store,
		secret:   secret,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
	}
}

// TicketKey returns the object key of the rendered ticket of id.
func TicketKey(id uuid.UUID) string {
	return "tickets/" + id.String() + ".pdf"
}

// Ticket handles GET /ticket/:id.
func (h *Handler) Ticket(c *fiber.Ctx) error {
	if !services.SecretMatches(h.secret, c.Get(services.InternalSecretHeader)) {
		h.logger.Warn("forbidden ticket request (bad secret)", "security", true, "ip", c.IP())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": true, "message": "forbidden"})
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "missing or invalid appointment id"})
	}
	ctx := c.UserContext()

	payload, err := h.source.Payload(ctx, id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.metrics.RecordTicketRender("not_found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": true, "message": "appointment not found"})
	case errors.Is(err, models.ErrForbidden):
		h.metrics.RecordTicketRender("forbidden")
		h.logger.Error("portal rejected gateway secret", "appointment_id", id.String())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": true, "message": "portal rejected ticket request"})
	case err != nil:
		return h.badGateway(c, id, "payload", err)
	}

	doc, err := h.renderer.Render(payload)
	if err != nil {
		return h.badGateway(c, id, "render", err)
	}
	key := TicketKey(id)
	if _, err := h.store.Put(ctx, key, bytes.NewReader(doc), int64(len(doc)), "application/pdf"); err != nil {
		return h.badGateway(c, id, "store", err)
	}
	url, err := h.store.Presign(ctx, key, h.ttl)
	if err != nil {
		return h.badGateway(c, id, "presign", err)
	}

	h.metrics.RecordTicketRender("ok")
	h.logger.Info("ticket rendered", "appointment_id", id.String(), "key", key, "bytes", len(doc))
	return c.Redirect(url, fiber.StatusFound)
}

func (h *Handler) badGateway(c *fiber.Ctx, id uuid.UUID, step string, err error) error {
	h.metrics.RecordTicketRender(step + "_failed")
	h.logger.Error("ticket generation failed", "appointment_id", id.String(), "step", step, "error", err.Error())
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": true, "message": "ticket generation failed at " + step})
}
