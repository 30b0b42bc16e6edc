package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Appointment is a booked visit. Date is always stored in UTC.
// PhotoKey is the object key of the attached photo; PhotoURL is the URL derived
// from it at upload time. Both are empty when no photo is attached.
type Appointment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   string    `gorm:"not null" json:"fullName"`
	AnimalType string    `gorm:"not null" json:"animalType"`
	Nickname   string    `gorm:"not null" json:"nickname"`
	UserPhone  string    `gorm:"not null;index" json:"userPhone"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	PhotoKey   string    `json:"-"`
	Version    int       `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasPhoto reports whether the appointment references a stored photo.
func (a *Appointment) HasPhoto() bool {
	return a.PhotoKey != "" || a.PhotoURL != ""
}

// AppointmentInput carries the user editable fields of an appointment as they
// arrive from a form: a local wall-clock date and time.
type AppointmentInput struct {
	FullName    string `json:"fullName" form:"fullName"`
	AnimalType  string `json:"animalType" form:"animalType"`
	Nickname    string `json:"nickname" form:"nickname"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber"`
	Date        string `json:"date" form:"date"` // YYYY-MM-DD
	Time        string `json:"time" form:"time"` // HH:MM
}

// Upload is an attachment received from a caller.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// TicketPayload is what the internal ticket endpoint returns to the gateway.
type TicketPayload struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"fullname"`
	UserPhone  string    `json:"userPhone"`
	AnimalType string    `json:"animalType"`
	Nickname   string    `json:"nickname"`
	DateUTC    time.Time `json:"dateUtc"`
	Cabinet    string    `json:"cabinet"`
	QRPayload  string    `json:"qrPayload"`
}
