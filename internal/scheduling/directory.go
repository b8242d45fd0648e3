package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

func (s *Scheduler) Patients() []patients.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patients.List()
}

func (s *Scheduler) Patient(id uuid.UUID) (patients.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patients.Get(id)
}

func (s *Scheduler) CreatePatient(ctx context.Context, d patients.Details) (patients.Patient, error) {
	s.mu.Lock()
	p, err := s.patients.Create(d)
	s.mu.Unlock()
	if err != nil {
		return patients.Patient{}, err
	}
	s.logEvent(ctx, nil, eventlog.EventPatientCreated, map[string]any{"patient_id": p.ID.String()})
	return p, nil
}

func (s *Scheduler) UpdatePatient(ctx context.Context, id uuid.UUID, d patients.Details) (patients.Patient, error) {
	s.mu.Lock()
	p, err := s.patients.Update(id, d)
	s.mu.Unlock()
	if err != nil {
		return patients.Patient{}, err
	}
	s.logEvent(ctx, nil, eventlog.EventPatientUpdated, map[string]any{"patient_id": p.ID.String()})
	return p, nil
}

// DeletePatient refuses while any appointment was booked under the
// patient's email. Their notes and recommendations go with them.
func (s *Scheduler) DeletePatient(ctx context.Context, id uuid.UUID) error {
	var notes, recs int
	s.mu.Lock()
	err := s.patients.Delete(id, s.appts.HasAppointmentsFor)
	if err == nil {
		notes, recs = s.journal.DropPatient(id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logEvent(ctx, nil, eventlog.EventPatientDeleted, map[string]any{
		"patient_id":      id.String(),
		"notes":           notes,
		"recommendations": recs,
	})
	return nil
}

// AddSpecialist registers a new specialist and generates their slots.
func (s *Scheduler) AddSpecialist(ctx context.Context, spec practice.Specialist) (practice.Specialist, error) {
	const op = "add specialist"

	s.mu.Lock()
	s.rollLocked()
	err := s.rules.AddSpecialist(spec)
	if err == nil {
		var fresh slots.Table
		fresh, err = s.generator.GenerateFor(spec.ID)
		if err == nil {
			s.table.Merge(fresh)
			s.metrics.SetAvailableSlots(s.table.Len())
		}
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, practice.ErrDuplicateSpecialist):
		return practice.Specialist{}, appointment.NewError(appointment.KindInvalidInput, op,
			"specialist_id", spec.ID, "reason", "duplicate_id")
	case errors.Is(err, practice.ErrInvalidRules):
		return practice.Specialist{}, appointment.NewError(appointment.KindInvalidInput, op, "specialist_id", spec.ID)
	case err != nil:
		return practice.Specialist{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logEvent(ctx, nil, eventlog.EventSpecialistCreated, map[string]any{
		"specialist_id": spec.ID,
		"services":      spec.Services,
		"work_days":     spec.WorkDays,
		"work_hours":    spec.WorkHours,
		"online":        spec.OnlineAvailable,
	})
	return spec, nil
}

// UpdateSpecialist replaces a specialist's availability and rebuilds only
// their slots. Manual slots of that specialist are dropped.
func (s *Scheduler) UpdateSpecialist(ctx context.Context, spec practice.Specialist) (practice.Specialist, error) {
	const op = "update specialist"

	s.mu.Lock()
	s.rollLocked()
	err := s.rules.ReplaceSpecialist(spec)
	if err == nil {
		var fresh slots.Table
		fresh, err = s.generator.GenerateFor(spec.ID)
		if err == nil {
			s.table.DropSpecialist(spec.ID)
			s.table.Merge(fresh)
			s.metrics.SetAvailableSlots(s.table.Len())
		}
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, practice.ErrUnknownSpecialist):
		return practice.Specialist{}, appointment.NewError(appointment.KindNotFound, op, "specialist_id", spec.ID)
	case errors.Is(err, practice.ErrInvalidRules):
		return practice.Specialist{}, appointment.NewError(appointment.KindInvalidInput, op, "specialist_id", spec.ID)
	case err != nil:
		return practice.Specialist{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logEvent(ctx, nil, eventlog.EventSpecialistUpdated, map[string]any{
		"specialist_id": spec.ID,
		"work_days":     spec.WorkDays,
		"work_hours":    spec.WorkHours,
		"online":        spec.OnlineAvailable,
	})
	return spec, nil
}
