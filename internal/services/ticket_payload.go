package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/google/uuid"

	"vet-portal/internal/models"
)

// TicketPayloadService answers the internal ticket endpoint. The shared secret
// is its only authorization; ownership is checked by TicketProxy before the
// gateway is ever called.
type TicketPayloadService struct {
	repo          AppointmentFinder
	secret        string
	cabinetPrefix string
	logger        *slog.Logger
}

// NewTicketPayloadService creates a TicketPayloadService. An empty secret
// rejects every request.
func NewTicketPayloadService(repo AppointmentFinder, secret, cabinetPrefix string, logger *slog.Logger) *TicketPayloadService {
	return &TicketPayloadService{
		repo:          repo,
		secret:        secret,
		cabinetPrefix: cabinetPrefix,
		logger:        logger,
	}
}

// Authorized reports whether presented matches the shared secret and logs a
// rejected attempt.
func (s *TicketPayloadService) Authorized(presented string) bool {
	if SecretMatches(s.secret, presented) {
		return true
	}
	s.logger.Warn("forbidden internal ticket request (bad secret)", "security", true)
	return false
}

// Payload returns the ticket data of appointment id when presented matches the secret.
func (s *TicketPayloadService) Payload(ctx context.Context, id uuid.UUID, presented string) (*models.TicketPayload, error) {
	if !s.Authorized(presented) {
		return nil, models.ErrForbidden
	}
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := BuildTicketPayload(appt, s.cabinetPrefix)
	return &payload, nil
}

// BuildTicketPayload projects an appointment onto the ticket document fields.
func BuildTicketPayload(appt *models.Appointment, cabinetPrefix string) models.TicketPayload {
	return models.TicketPayload{
		ID:         appt.ID,
		FullName:   appt.FullName,
		UserPhone:  appt.UserPhone,
		AnimalType: appt.AnimalType,
		Nickname:   appt.Nickname,
		DateUTC:    appt.Date.UTC(),
		Cabinet:    Cabinet(cabinetPrefix, appt.ID),
		QRPayload:  appt.ID.String(),
	}
}

// SecretMatches compares presented to expected in constant time. An empty
// expected secret never matches.
func SecretMatches(expected, presented string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
