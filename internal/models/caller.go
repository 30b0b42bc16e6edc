package models

// Roles known to the portal.
const (
	RoleUser   = "User"
	RoleDoctor = "Doctor"
	RoleAdmin  = "Admin"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	Subject string
	Phone   string
	Role    string
}

// IsStaff reports whether the caller works at the clinic.
func (c Caller) IsStaff() bool {
	return c.Role == RoleAdmin || c.Role == RoleDoctor
}

// Owns reports whether the appointment was booked by the caller.
func (c Caller) Owns(a *Appointment) bool {
	return c.Phone != "" && a.UserPhone == c.Phone
}
