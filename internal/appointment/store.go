package appointment

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/clock"
)

// Store keeps every appointment in memory. Records are never removed;
// rejection is a status. Store does no locking of its own: the scheduler
// serializes access together with the slot table.
type Store struct {
	clock *clock.Clock
	byID  map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func NewStore(c *clock.Clock) *Store {
	return &Store{
		clock: c,
		byID:  make(map[uuid.UUID]*Appointment),
	}
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) Get(id uuid.UUID) (Appointment, error) {
	a, ok := s.byID[id]
	if !ok {
		return Appointment{}, NewError(KindNotFound, "get appointment", "appointment_id", id.String())
	}
	return *a, nil
}

// List returns the appointments accepted by match (all when nil) ordered by
// date and time.
func (s *Store) List(match func(Appointment) bool) []Appointment {
	out := make([]Appointment, 0, len(s.order))
	for _, id := range s.order {
		a := *s.byID[id]
		if match == nil || match(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// LiveAt finds the live appointment holding (date, time, specialist), if any.
func (s *Store) LiveAt(date, hhmm, specialistID string) (Appointment, bool) {
	for _, id := range s.order {
		if a := s.byID[id]; a.Occupies(date, hhmm, specialistID) {
			return *a, true
		}
	}
	return Appointment{}, false
}

// HasAppointmentsFor reports whether any appointment, in any status, was
// made for the given patient email.
func (s *Store) HasAppointmentsFor(email string) bool {
	for _, id := range s.order {
		if strings.EqualFold(s.byID[id].Patient.Email, email) {
			return true
		}
	}
	return false
}

// Insert adds a record after checking its shape and the one-live-appointment
// per key rule. Booking policy (who may book, which status) belongs to the
// caller. A nil ID is replaced with a fresh one.
func (s *Store) Insert(a Appointment) (Appointment, error) {
	const op = "insert appointment"

	if _, err := s.clock.ToInstant(a.Date, a.Time); err != nil {
		return Appointment{}, NewError(KindInvalidInput, op, "date", a.Date, "time", a.Time)
	}
	if !a.Status.Valid() {
		return Appointment{}, NewError(KindInvalidInput, op, "status", string(a.Status))
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if _, exists := s.byID[a.ID]; exists {
		return Appointment{}, NewError(KindInvalidInput, op, "appointment_id", a.ID.String(), "reason", "duplicate_id")
	}
	if a.Live() {
		if held, ok := s.LiveAt(a.Date, a.Time, a.SpecialistID); ok {
			return Appointment{}, conflictWith(op, held)
		}
	}

	now := s.clock.Now().Instant
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	stored := a
	s.byID[a.ID] = &stored
	s.order = append(s.order, a.ID)
	return a, nil
}

func (s *Store) Approve(id uuid.UUID) (Appointment, error) {
	return s.transition("approve", id, StatusPendingPayment, []Status{StatusPending}, nil)
}

// ConfirmPayment is the manual payment gate: it marks the payment verified
// and confirms the appointment.
func (s *Store) ConfirmPayment(id uuid.UUID, method string) (Appointment, error) {
	return s.transition("confirm payment", id, StatusConfirmed, []Status{StatusPendingPayment}, func(a *Appointment) {
		a.PaymentVerified = true
		a.PaymentMethod = method
	})
}

func (s *Store) Reject(id uuid.UUID) (Appointment, error) {
	return s.transition("reject", id, StatusRejected,
		[]Status{StatusPending, StatusPendingPayment, StatusConfirmed}, nil)
}

// SetStatus moves to any status valid on the appointment's side of now.
func (s *Store) SetStatus(id uuid.UUID, status Status) (Appointment, error) {
	if !status.Valid() {
		return Appointment{}, NewError(KindInvalidInput, "set status", "status", string(status))
	}
	return s.transition("set status", id, status, nil, nil)
}

func (s *Store) MarkCompleted(id uuid.UUID) (Appointment, error) {
	return s.transition("mark completed", id, StatusCompleted, nil, nil)
}

func (s *Store) MarkNoShow(id uuid.UUID) (Appointment, error) {
	return s.transition("mark no-show", id, StatusNoShow, nil, nil)
}

// RecordPayment stores the patient's declared payment method. Verification
// stays with staff, so the status is left alone.
func (s *Store) RecordPayment(id uuid.UUID, method string) (Appointment, error) {
	a, ok := s.byID[id]
	if !ok {
		return Appointment{}, NewError(KindNotFound, "record payment", "appointment_id", id.String())
	}
	a.PaymentMethod = method
	a.PaymentVerified = false
	a.UpdatedAt = s.clock.Now().Instant
	return *a, nil
}

// transition validates target against the partition table for the
// appointment's current position and, when from is non-nil, against the
// allowed source statuses. Nothing is written unless every check passes.
func (s *Store) transition(op string, id uuid.UUID, target Status, from []Status, mutate func(*Appointment)) (Appointment, error) {
	a, ok := s.byID[id]
	if !ok {
		return Appointment{}, NewError(KindNotFound, op, "appointment_id", id.String())
	}

	if from != nil && !slices.Contains(from, a.Status) {
		return Appointment{}, NewError(KindInvalidTransition, op,
			"appointment_id", id.String(), "from", string(a.Status), "to", string(target))
	}

	past, err := s.clock.IsPast(a.Date, a.Time)
	if err != nil {
		return Appointment{}, NewError(KindInvalidInput, op, "date", a.Date, "time", a.Time)
	}
	pos := PositionOf(past)
	if !pos.Permits(target) {
		return Appointment{}, NewError(KindInvalidTransition, op,
			"appointment_id", id.String(), "from", string(a.Status), "to", string(target), "position", pos.String())
	}

	if !a.Live() && target != StatusRejected {
		if held, ok := s.LiveAt(a.Date, a.Time, a.SpecialistID); ok {
			return Appointment{}, conflictWith(op, held)
		}
	}

	a.Status = target
	if mutate != nil {
		mutate(a)
	}
	a.UpdatedAt = s.clock.Now().Instant
	return *a, nil
}

// Revert puts back a record exactly as it was before a transition. It only
// touches appointments the store already holds.
func (s *Store) Revert(prev Appointment) {
	if a, ok := s.byID[prev.ID]; ok {
		*a = prev
	}
}

// rewrite bypasses validation; only the reconciler uses it.
func (s *Store) rewrite(id uuid.UUID, status Status, at time.Time) {
	a := s.byID[id]
	a.Status = status
	a.UpdatedAt = at
}

func conflictWith(op string, held Appointment) *Error {
	return NewError(KindSlotConflict, op,
		"date", held.Date, "time", held.Time, "specialist_id", held.SpecialistID,
		"appointment_id", held.ID.String())
}
