package scheduling

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

type BookingRequest struct {
	Date          string
	Time          string
	SpecialistID  string
	Venue         practice.Venue
	ServiceTypeID string
	Patient       appointment.Contact
	Notes         string
}

// AdminBookingRequest books on behalf of a patient. Exactly one of PatientID
// and NewPatient must be set.
type AdminBookingRequest struct {
	PatientID     uuid.UUID
	NewPatient    *patients.Details
	Date          string
	Time          string
	SpecialistID  string
	Venue         practice.Venue
	ServiceTypeID string
	Notes         string
}

// Book is the patient self-service path. The requested slot must be on
// offer and the appointment starts out pending.
func (s *Scheduler) Book(ctx context.Context, req BookingRequest) (appointment.Appointment, error) {
	var booked appointment.Appointment

	err := s.withSlotLock(ctx, slotKey(req.Date, req.Time, req.SpecialistID), func(ctx context.Context) error {
		if err := s.checkPatientBooking(req); err != nil {
			return err
		}

		a, err := s.insertClaimed(ctx, "book", appointment.Appointment{
			ID:            uuid.New(),
			Date:          req.Date,
			Time:          req.Time,
			Status:        appointment.StatusPending,
			Patient:       req.Patient,
			Notes:         req.Notes,
			SpecialistID:  req.SpecialistID,
			Venue:         req.Venue,
			ServiceTypeID: req.ServiceTypeID,
			BookedBy:      appointment.RolePatient,
		})
		if err != nil {
			return err
		}
		s.table.Release(a.Date, a.Time, a.SpecialistID)
		s.metrics.SetAvailableSlots(s.table.Len())
		booked = a
		return nil
	})

	s.metrics.ObserveBooking(string(appointment.RolePatient), result(err))
	if err != nil {
		return appointment.Appointment{}, err
	}

	s.logEvent(ctx, &booked.ID, eventlog.EventAppointmentCreated, bookingPayload(booked))
	return booked, nil
}

func (s *Scheduler) checkPatientBooking(req BookingRequest) error {
	const op = "book"

	spec, ok := s.rules.Specialist(req.SpecialistID)
	if !ok {
		return appointment.NewError(appointment.KindNotFound, op, "specialist_id", req.SpecialistID)
	}
	if _, ok := s.rules.ServiceType(req.ServiceTypeID); !ok || !spec.Offers(req.ServiceTypeID) {
		return appointment.NewError(appointment.KindNotFound, op,
			"specialist_id", req.SpecialistID, "service_type_id", req.ServiceTypeID)
	}
	if req.Venue.IsZero() {
		return appointment.NewError(appointment.KindInvalidInput, op, "field", "venue")
	}
	if !s.rules.KnownVenue(req.Venue) {
		return appointment.NewError(appointment.KindNotFound, op, "location_id", req.Venue.LocationID())
	}
	if strings.TrimSpace(req.Patient.Name) == "" || strings.TrimSpace(req.Patient.Email) == "" {
		return appointment.NewError(appointment.KindInvalidInput, op, "field", "patient")
	}

	past, err := s.clock.IsPast(req.Date, req.Time)
	if err != nil {
		return appointment.NewError(appointment.KindInvalidInput, op, "date", req.Date, "time", req.Time)
	}
	if past {
		return appointment.NewError(appointment.KindPastSlot, op, "date", req.Date, "time", req.Time)
	}

	if held, ok := s.appts.LiveAt(req.Date, req.Time, req.SpecialistID); ok {
		return appointment.NewError(appointment.KindSlotConflict, op,
			"date", req.Date, "time", req.Time, "specialist_id", req.SpecialistID,
			"appointment_id", held.ID.String())
	}
	if _, ok := s.table.Find(req.Date, req.Time, req.SpecialistID, req.Venue); !ok {
		return appointment.NewError(appointment.KindNotFound, op,
			"date", req.Date, "time", req.Time, "specialist_id", req.SpecialistID, "venue", req.Venue.String())
	}
	return nil
}

// AdminBook is the staff path. It does not require an offered slot and
// accepts elapsed times, recording those as completed history.
func (s *Scheduler) AdminBook(ctx context.Context, who Identity, req AdminBookingRequest) (appointment.Appointment, error) {
	var (
		booked  appointment.Appointment
		created *patients.Patient
	)

	err := s.withSlotLock(ctx, slotKey(req.Date, req.Time, req.SpecialistID), func(ctx context.Context) error {
		patient, status, err := s.checkStaffBooking(who, req)
		if err != nil {
			return err
		}

		draft := appointment.Appointment{ID: uuid.New(), Date: req.Date, Time: req.Time, SpecialistID: req.SpecialistID}
		if err := s.claim(ctx, "admin book", draft); err != nil {
			return err
		}
		if req.NewPatient != nil {
			p, err := s.patients.Create(*req.NewPatient)
			if err != nil {
				s.unclaim(ctx, draft)
				return err
			}
			patient = p
			created = &p
		}

		a, err := s.insertClaimed(ctx, "admin book", appointment.Appointment{
			ID:            draft.ID,
			Date:          req.Date,
			Time:          req.Time,
			Status:        status,
			Patient:       patient.Contact(),
			Notes:         req.Notes,
			SpecialistID:  req.SpecialistID,
			Venue:         req.Venue,
			ServiceTypeID: req.ServiceTypeID,
			BookedBy:      who.Role,
		})
		if err != nil {
			return err
		}
		s.table.Release(a.Date, a.Time, a.SpecialistID)
		s.metrics.SetAvailableSlots(s.table.Len())
		booked = a
		return nil
	})

	s.metrics.ObserveBooking(string(who.Role), result(err))
	if err != nil {
		return appointment.Appointment{}, err
	}

	if created != nil {
		s.logEvent(ctx, nil, eventlog.EventPatientCreated, map[string]any{"patient_id": created.ID.String()})
	}
	s.logEvent(ctx, &booked.ID, eventlog.EventAppointmentCreated, bookingPayload(booked))
	return booked, nil
}

// checkStaffBooking validates a staff booking and picks its initial status.
// For an existing patient it returns the stored record.
func (s *Scheduler) checkStaffBooking(who Identity, req AdminBookingRequest) (patients.Patient, appointment.Status, error) {
	const op = "admin book"

	if !who.Staff() {
		return patients.Patient{}, "", appointment.NewError(appointment.KindInvalidInput, op, "role", string(who.Role))
	}

	var patient patients.Patient
	switch {
	case req.NewPatient != nil && req.PatientID != uuid.Nil,
		req.NewPatient == nil && req.PatientID == uuid.Nil:
		return patients.Patient{}, "", appointment.NewError(appointment.KindInvalidInput, op, "field", "patient")
	case req.NewPatient != nil:
		if strings.TrimSpace(req.NewPatient.Email) == "" {
			return patients.Patient{}, "", appointment.NewError(appointment.KindInvalidInput, op, "field", "email")
		}
		if err := s.patients.CheckEmail(req.NewPatient.Email, uuid.Nil); err != nil {
			return patients.Patient{}, "", err
		}
	default:
		p, err := s.patients.Get(req.PatientID)
		if err != nil {
			return patients.Patient{}, "", err
		}
		patient = p
	}

	if _, ok := s.rules.Specialist(req.SpecialistID); !ok {
		return patients.Patient{}, "", appointment.NewError(appointment.KindNotFound, op, "specialist_id", req.SpecialistID)
	}
	if _, ok := s.rules.ServiceType(req.ServiceTypeID); !ok {
		return patients.Patient{}, "", appointment.NewError(appointment.KindNotFound, op, "service_type_id", req.ServiceTypeID)
	}
	if req.Venue.IsZero() {
		return patients.Patient{}, "", appointment.NewError(appointment.KindInvalidInput, op, "field", "venue")
	}
	if !s.rules.KnownVenue(req.Venue) {
		return patients.Patient{}, "", appointment.NewError(appointment.KindNotFound, op, "location_id", req.Venue.LocationID())
	}

	past, err := s.clock.IsPast(req.Date, req.Time)
	if err != nil {
		return patients.Patient{}, "", appointment.NewError(appointment.KindInvalidInput, op, "date", req.Date, "time", req.Time)
	}
	if held, ok := s.appts.LiveAt(req.Date, req.Time, req.SpecialistID); ok {
		return patients.Patient{}, "", appointment.NewError(appointment.KindSlotConflict, op,
			"date", req.Date, "time", req.Time, "specialist_id", req.SpecialistID,
			"appointment_id", held.ID.String())
	}

	status := appointment.StatusConfirmed
	if past {
		status = appointment.StatusCompleted
	}
	return patient, status, nil
}

// insertClaimed stores a live appointment after claiming its key. The claim
// is given back when the insert fails. Callers hold s.mu.
func (s *Scheduler) insertClaimed(ctx context.Context, op string, a appointment.Appointment) (appointment.Appointment, error) {
	if err := s.claim(ctx, op, a); err != nil {
		return appointment.Appointment{}, err
	}
	stored, err := s.appts.Insert(a)
	if err != nil {
		s.unclaim(ctx, a)
		return appointment.Appointment{}, err
	}
	return stored, nil
}

func bookingPayload(a appointment.Appointment) map[string]any {
	return map[string]any{
		"date":            a.Date,
		"time":            a.Time,
		"specialist_id":   a.SpecialistID,
		"venue":           a.Venue.String(),
		"service_type_id": a.ServiceTypeID,
		"status":          a.Status,
		"booked_by":       a.BookedBy,
	}
}
