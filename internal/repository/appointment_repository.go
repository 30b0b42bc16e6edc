package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vet-portal/internal/models"
)

// AppointmentRepository defines the durable appointment store.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	ListByPhone(ctx context.Context, phone string) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentRepositoryImpl stores appointments in PostgreSQL through GORM.
type AppointmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new AppointmentRepositoryImpl with the provided GORM connection.
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepositoryImpl {
	return &AppointmentRepositoryImpl{db: db}
}

// Migrate creates or updates the appointments table.
func (r *AppointmentRepositoryImpl) Migrate() error {
	return r.db.AutoMigrate(&models.Appointment{})
}

// Create inserts a new appointment. The version starts at 1.
func (r *AppointmentRepositoryImpl) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.Version == 0 {
		appt.Version = 1
	}
	return r.db.WithContext(ctx).Create(appt).Error
}

// Get retrieves an appointment by its ID.
func (r *AppointmentRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListByPhone returns the appointments owned by phone, earliest first.
func (r *AppointmentRepositoryImpl) ListByPhone(ctx context.Context, phone string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).Where("user_phone = ?", phone).Order("date asc").Find(&appts).Error
	return appts, err
}

// ListAll returns every appointment, earliest first.
func (r *AppointmentRepositoryImpl) ListAll(ctx context.Context) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).Order("date asc").Find(&appts).Error
	return appts, err
}

// Update writes appt if its stored version still equals appt.Version and bumps
// the version. A stale version yields models.ErrConflict.
func (r *AppointmentRepositoryImpl) Update(ctx context.Context, appt *models.Appointment) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND version = ?", appt.ID, appt.Version).
		Updates(map[string]interface{}{
			"full_name":   appt.FullName,
			"animal_type": appt.AnimalType,
			"nickname":    appt.Nickname,
			"user_phone":  appt.UserPhone,
			"date":        appt.Date.UTC(),
			"photo_url":   appt.PhotoURL,
			"photo_key":   appt.PhotoKey,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", appt.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.ErrNotFound
		}
		return models.ErrConflict
	}
	appt.Version++
	appt.UpdatedAt = now
	return nil
}

// Delete removes an appointment by its ID.
func (r *AppointmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
