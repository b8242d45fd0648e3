// Package patients keeps the practice's patient records.
package patients

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
)

type Patient struct {
	ID                  uuid.UUID `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	DateOfBirth         string    `json:"date_of_birth,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	LeadingSpecialistID string    `json:"leading_specialist_id,omitempty"`
	RegisteredAt        time.Time `json:"registered_at"`
}

func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p Patient) Contact() appointment.Contact {
	return appointment.Contact{Name: p.FullName(), Email: p.Email, Phone: p.Phone}
}

// Details are the editable fields of a patient.
type Details struct {
	FirstName           string
	LastName            string
	Email               string
	Phone               string
	DateOfBirth         string
	Notes               string
	LeadingSpecialistID string
}

// Registry is an in-memory patient index with unique, case-insensitive
// emails. Like the appointment store it relies on the scheduler for locking.
type Registry struct {
	byID    map[uuid.UUID]*Patient
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		byID:    make(map[uuid.UUID]*Patient),
		byEmail: make(map[string]uuid.UUID),
		now:     now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail reports a DuplicatePatient error when email is taken by anyone
// other than except.
func (r *Registry) CheckEmail(email string, except uuid.UUID) error {
	if id, ok := r.byEmail[emailKey(email)]; ok && id != except {
		return appointment.NewError(appointment.KindDuplicatePatient, "check patient email",
			"email", emailKey(email), "patient_id", id.String())
	}
	return nil
}

func (r *Registry) Create(d Details) (Patient, error) {
	return r.Restore(Patient{
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Email:               d.Email,
		Phone:               d.Phone,
		DateOfBirth:         d.DateOfBirth,
		Notes:               d.Notes,
		LeadingSpecialistID: d.LeadingSpecialistID,
	})
}

// Restore inserts a full record, keeping its ID and registration time when
// set. Fixtures use it to reload saved patients.
func (r *Registry) Restore(p Patient) (Patient, error) {
	if emailKey(p.Email) == "" {
		return Patient{}, appointment.NewError(appointment.KindInvalidInput, "create patient", "field", "email")
	}
	if err := r.CheckEmail(p.Email, uuid.Nil); err != nil {
		return Patient{}, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := r.byID[p.ID]; exists {
		return Patient{}, appointment.NewError(appointment.KindInvalidInput, "create patient",
			"patient_id", p.ID.String(), "reason", "duplicate_id")
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = r.now()
	}

	stored := p
	r.byID[p.ID] = &stored
	r.byEmail[emailKey(p.Email)] = p.ID
	return p, nil
}

func (r *Registry) Update(id uuid.UUID, d Details) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, appointment.NewError(appointment.KindNotFound, "update patient", "patient_id", id.String())
	}
	if emailKey(d.Email) == "" {
		return Patient{}, appointment.NewError(appointment.KindInvalidInput, "update patient", "field", "email")
	}
	if err := r.CheckEmail(d.Email, id); err != nil {
		return Patient{}, err
	}

	delete(r.byEmail, emailKey(p.Email))
	p.FirstName = d.FirstName
	p.LastName = d.LastName
	p.Email = d.Email
	p.Phone = d.Phone
	p.DateOfBirth = d.DateOfBirth
	p.Notes = d.Notes
	p.LeadingSpecialistID = d.LeadingSpecialistID
	r.byEmail[emailKey(p.Email)] = id
	return *p, nil
}

// Delete removes a patient unless inUse reports appointments booked under
// their email.
func (r *Registry) Delete(id uuid.UUID, inUse func(email string) bool) error {
	p, ok := r.byID[id]
	if !ok {
		return appointment.NewError(appointment.KindNotFound, "delete patient", "patient_id", id.String())
	}
	if inUse != nil && inUse(p.Email) {
		return appointment.NewError(appointment.KindInUse, "delete patient", "patient_id", id.String())
	}
	delete(r.byEmail, emailKey(p.Email))
	delete(r.byID, id)
	return nil
}

func (r *Registry) Get(id uuid.UUID) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, appointment.NewError(appointment.KindNotFound, "get patient", "patient_id", id.String())
	}
	return *p, nil
}

func (r *Registry) ByEmail(email string) (Patient, bool) {
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return Patient{}, false
	}
	return *r.byID[id], true
}

// List returns patients sorted by last and first name.
func (r *Registry) List() []Patient {
	out := make([]Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
