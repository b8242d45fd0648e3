package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
)

func (s *Scheduler) Approve(ctx context.Context, id uuid.UUID) (appointment.Appointment, error) {
	return s.transition(ctx, "approve", id, s.appts.Approve)
}

// ConfirmPayment is staff confirming that payment arrived.
func (s *Scheduler) ConfirmPayment(ctx context.Context, id uuid.UUID, method string) (appointment.Appointment, error) {
	return s.transition(ctx, "confirm_payment", id, func(id uuid.UUID) (appointment.Appointment, error) {
		return s.appts.ConfirmPayment(id, method)
	})
}

func (s *Scheduler) Reject(ctx context.Context, id uuid.UUID) (appointment.Appointment, error) {
	return s.transition(ctx, "reject", id, s.appts.Reject)
}

func (s *Scheduler) SetStatus(ctx context.Context, id uuid.UUID, status appointment.Status) (appointment.Appointment, error) {
	return s.transition(ctx, "set_status", id, func(id uuid.UUID) (appointment.Appointment, error) {
		return s.appts.SetStatus(id, status)
	})
}

func (s *Scheduler) MarkCompleted(ctx context.Context, id uuid.UUID) (appointment.Appointment, error) {
	return s.transition(ctx, "mark_completed", id, s.appts.MarkCompleted)
}

func (s *Scheduler) MarkNoShow(ctx context.Context, id uuid.UUID) (appointment.Appointment, error) {
	return s.transition(ctx, "mark_no_show", id, s.appts.MarkNoShow)
}

// RecordPayment stores the method a patient says they paid with. Staff still
// have to confirm it.
func (s *Scheduler) RecordPayment(ctx context.Context, id uuid.UUID, method string) (appointment.Appointment, error) {
	if method == "" {
		return appointment.Appointment{}, appointment.NewError(appointment.KindInvalidInput, "record payment", "field", "method")
	}

	s.mu.Lock()
	a, err := s.appts.RecordPayment(id, method)
	s.mu.Unlock()

	s.metrics.ObserveTransition("record_payment", result(err))
	if err != nil {
		return appointment.Appointment{}, err
	}
	s.logEvent(ctx, &a.ID, eventlog.EventAppointmentPayment, map[string]any{
		"method":   method,
		"verified": a.PaymentVerified,
	})
	return a, nil
}

// transition runs a store transition under the lock. An appointment that
// ends up live takes its key out of the slot table. With shared claims, a
// revived appointment must win its key back and a rejected one gives it up.
func (s *Scheduler) transition(ctx context.Context, op string, id uuid.UUID, apply func(uuid.UUID) (appointment.Appointment, error)) (appointment.Appointment, error) {
	s.mu.Lock()
	prev, found := appointment.Appointment{}, false
	if cur, err := s.appts.Get(id); err == nil {
		prev, found = cur, true
	}
	a, err := apply(id)
	if err == nil && found {
		switch {
		case !prev.Live() && a.Live():
			if cerr := s.claim(ctx, op, a); cerr != nil {
				s.appts.Revert(prev)
				err = cerr
			}
		case prev.Live() && !a.Live():
			s.unclaim(ctx, a)
		}
	}
	if err == nil && a.Live() {
		if s.table.Release(a.Date, a.Time, a.SpecialistID) > 0 {
			s.metrics.SetAvailableSlots(s.table.Len())
		}
	}
	s.mu.Unlock()

	s.metrics.ObserveTransition(op, result(err))
	if err != nil {
		return appointment.Appointment{}, err
	}

	s.logEvent(ctx, &a.ID, eventlog.EventAppointmentStatusChanged, map[string]any{
		"operation": op,
		"from":      prev.Status,
		"to":        a.Status,
	})
	return a, nil
}
