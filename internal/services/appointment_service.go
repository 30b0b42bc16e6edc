package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
	"vet-portal/internal/repository"
)

// AppointmentService implements booking, editing and cancelling appointments
// together with their photo lifecycle.
type AppointmentService struct {
	repo        repository.AppointmentRepository
	attachments *AttachmentService
	location    *time.Location
	logger      *slog.Logger
}

// NewAppointmentService creates an AppointmentService. Local form dates are
// interpreted in loc.
func NewAppointmentService(repo repository.AppointmentRepository, attachments *AttachmentService, loc *time.Location, logger *slog.Logger) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		repo:        repo,
		attachments: attachments,
		location:    loc,
		logger:      logger,
	}
}

// Book creates an appointment owned by caller. A photo that fails to upload is
// dropped and the appointment is still created.
func (s *AppointmentService) Book(ctx context.Context, caller models.Caller, in models.AppointmentInput, photo *models.Upload) (*models.Appointment, error) {
	if caller.Phone == "" {
		return nil, errors.Wrap(models.ErrInvalidInput, "caller has no phone number")
	}
	date, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:         uuid.New(),
		FullName:   strings.TrimSpace(in.FullName),
		AnimalType: strings.TrimSpace(in.AnimalType),
		Nickname:   strings.TrimSpace(in.Nickname),
		UserPhone:  caller.Phone,
		Date:       date,
	}
	stored, ok := s.attachments.Upload(ctx, appt.ID, photo)
	if ok {
		appt.PhotoKey = stored.Key
		appt.PhotoURL = stored.URL
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		if ok {
			s.attachments.Release(ctx, appt.ID, stored.Key, "", "create_failed")
		}
		return nil, errors.Wrap(err, "failed to save appointment")
	}
	s.logger.Info("appointment booked", "appointment_id", appt.ID.String(), "has_photo", appt.HasPhoto())
	return appt, nil
}

// Edit updates an appointment and optionally replaces its photo. The new photo
// is uploaded and committed before the previous object is deleted, so the
// record never references a deleted object. If the record changed since it was
// read, the new object is released and models.ErrConflict is returned.
func (s *AppointmentService) Edit(ctx context.Context, caller models.Caller, id uuid.UUID, in models.AppointmentInput, photo *models.Upload) (*models.Appointment, error) {
	prev, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	date, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.FullName = strings.TrimSpace(in.FullName)
	next.AnimalType = strings.TrimSpace(in.AnimalType)
	next.Nickname = strings.TrimSpace(in.Nickname)
	next.Date = date
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" && caller.IsStaff() {
		next.UserPhone = phone
	}

	stored, replaced := s.attachments.Upload(ctx, id, photo)
	if replaced {
		next.PhotoKey = stored.Key
		next.PhotoURL = stored.URL
	}

	if err := s.repo.Update(ctx, &next); err != nil {
		if replaced {
			s.attachments.Release(ctx, id, stored.Key, "", "update_failed")
		}
		if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to update appointment")
	}

	if replaced && prev.HasPhoto() {
		s.attachments.Release(ctx, id, prev.PhotoKey, prev.PhotoURL, "replaced")
	}
	return &next, nil
}

// Remove deletes an appointment. Photo cleanup is attempted first and its
// failure never prevents the record from being removed.
func (s *AppointmentService) Remove(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	appt, err := s.authorized(ctx, caller, id)
	if err != nil {
		return err
	}
	s.logger.Info("deleting appointment", "appointment_id", id.String(), "photo_url", appt.PhotoURL)

	if appt.HasPhoto() {
		s.attachments.Release(ctx, id, appt.PhotoKey, appt.PhotoURL, "appointment_deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "failed to delete appointment")
	}
	return nil
}

// Get returns an appointment visible to caller.
func (s *AppointmentService) Get(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Appointment, error) {
	return s.authorized(ctx, caller, id)
}

// ListMine returns the caller's appointments, earliest first.
func (s *AppointmentService) ListMine(ctx context.Context, caller models.Caller) ([]models.Appointment, error) {
	return s.repo.ListByPhone(ctx, caller.Phone)
}

// ListAll returns every appointment for the staff list.
func (s *AppointmentService) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.repo.ListAll(ctx)
}

func (s *AppointmentService) authorized(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(appt) && !caller.IsStaff() {
		s.logger.Warn("appointment access denied",
			"security", true,
			"appointment_id", id.String(),
			"caller", caller.Subject,
		)
		return nil, models.ErrForbidden
	}
	return appt, nil
}

func (s *AppointmentService) validate(in models.AppointmentInput) (time.Time, error) {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return time.Time{}, errors.Wrap(models.ErrInvalidInput, "full name is required")
	case strings.TrimSpace(in.AnimalType) == "":
		return time.Time{}, errors.Wrap(models.ErrInvalidInput, "animal type is required")
	case strings.TrimSpace(in.Nickname) == "":
		return time.Time{}, errors.Wrap(models.ErrInvalidInput, "nickname is required")
	}
	return ParseLocalDateTime(in.Date, in.Time, s.location)
}

// ParseLocalDateTime combines a YYYY-MM-DD date and an HH:MM[:SS] time read in
// loc and returns the instant in UTC.
func ParseLocalDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, errors.Wrap(models.ErrInvalidInput, "date and time are required")
	}
	layout := "2006-01-02 15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "2006-01-02 15:04:05"
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(models.ErrInvalidInput, "invalid date or time %q %q", date, clock)
	}
	return t.UTC(), nil
}
