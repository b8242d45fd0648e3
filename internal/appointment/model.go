// Package appointment owns appointment records and the rules for moving
// them between statuses.
package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/practice"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusRejected       Status = "rejected"
	StatusCompleted      Status = "completed"
	StatusNoShow         Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingPayment, StatusConfirmed,
		StatusRejected, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Role identifies who is acting, and for appointments who booked them.
type Role string

const (
	RolePatient    Role = "patient"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleSpecialist || r == RoleAdmin
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Appointment struct {
	ID              uuid.UUID      `json:"id"`
	Date            string         `json:"date"`
	Time            string         `json:"time"`
	Status          Status         `json:"status"`
	Patient         Contact        `json:"patient"`
	Notes           string         `json:"notes,omitempty"`
	SpecialistID    string         `json:"specialist_id"`
	Venue           practice.Venue `json:"venue"`
	ServiceTypeID   string         `json:"service_type_id"`
	PaymentVerified bool           `json:"payment_verified"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	BookedBy        Role           `json:"booked_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Live appointments hold their (date, time, specialist) key exclusively.
func (a Appointment) Live() bool {
	return a.Status != StatusRejected
}

func (a Appointment) Occupies(date, hhmm, specialistID string) bool {
	return a.Live() && a.Date == date && a.Time == hhmm && a.SpecialistID == specialistID
}
