package models

import "errors"

var (
	// ErrNotFound is returned when an appointment does not exist.
	ErrNotFound = errors.New("appointment not found")
	// ErrForbidden is returned when the caller may not act on an appointment.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when an appointment changed since it was read.
	ErrConflict = errors.New("appointment was modified concurrently")
	// ErrInvalidInput wraps validation failures of caller supplied fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTicketNotConfigured is returned when the ticket gateway URL or secret is missing.
	ErrTicketNotConfigured = errors.New("ticket service is not configured")
)
