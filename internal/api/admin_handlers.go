package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/scheduling"
)

func adminBookHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminAppointmentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		venue, err := practice.ParseVenue(req.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", map[string]string{"location": "venue"})
			return
		}

		book := scheduling.AdminBookingRequest{
			Date:          req.Date,
			Time:          req.Time,
			SpecialistID:  req.SpecialistID,
			Venue:         venue,
			ServiceTypeID: req.ServiceTypeID,
			Notes:         req.Notes,
		}
		if req.PatientID != "" {
			id, err := uuid.Parse(req.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_failed", map[string]string{"patient_id": "uuid"})
				return
			}
			book.PatientID = id
		}
		if req.NewPatient != nil {
			d := toDetails(*req.NewPatient)
			book.NewPatient = &d
		}

		appt, err := sched.AdminBook(r.Context(), GetIdentity(r.Context()), book)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, appt)
	}
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (appointment.Appointment, error)

// transitionHandler serves the body-less status actions.
func transitionHandler(apply transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		appt, err := apply(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func confirmPaymentHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req PaymentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		appt, err := sched.ConfirmPayment(r.Context(), id, req.Method)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func setStatusHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req StatusRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		appt, err := sched.SetStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func addSlotHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, venue, ok := decodeSlot(w, r)
		if !ok {
			return
		}
		slot, err := sched.AddSlot(r.Context(), req.Date, req.Time, venue, req.SpecialistID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, slot)
	}
}

func deleteSlotHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, venue, ok := decodeSlot(w, r)
		if !ok {
			return
		}
		if err := sched.DeleteSlot(r.Context(), req.Date, req.Time, req.SpecialistID, venue); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeSlot(w http.ResponseWriter, r *http.Request) (SlotRequest, practice.Venue, bool) {
	var req SlotRequest
	if !decodeAndValidate(w, r, &req) {
		return req, practice.Venue{}, false
	}
	venue, err := practice.ParseVenue(req.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", map[string]string{"location": "venue"})
		return req, practice.Venue{}, false
	}
	return req, venue, true
}

func regenerateHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sched.Regenerate(r.Context()); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotsResponse(sched.AllSlots()))
	}
}

func reconcileHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fixed, err := sched.Reconcile(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if fixed == nil {
			fixed = []appointment.Correction{}
		}
		writeJSON(w, http.StatusOK, ReconcileResponse{Corrections: fixed})
	}
}

func listPatientsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := sched.Patients()
		if list == nil {
			list = []patients.Patient{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getPatientHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		p, err := sched.Patient(id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func createPatientHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		p, err := sched.CreatePatient(r.Context(), toDetails(req))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updatePatientHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req PatientRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		p, err := sched.UpdatePatient(r.Context(), id, toDetails(req))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func deletePatientHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := sched.DeletePatient(r.Context(), id); err != nil {
			handleDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// updateSpecialistHandler replaces the availability fields of a specialist;
// name and title are kept.
func updateSpecialistHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req SpecialistRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		spec, ok := sched.Rules().Specialist(id)
		if !ok {
			handleDomainError(w, appointment.NewError(appointment.KindNotFound, "update specialist", "specialist_id", id))
			return
		}
		spec.Services = req.Services
		spec.WorkHours = req.WorkHours
		spec.OnlineAvailable = req.OnlineAvailable
		spec.WorkDays = make([]time.Weekday, len(req.WorkDays))
		for i, d := range req.WorkDays {
			spec.WorkDays[i] = time.Weekday(d)
		}

		updated, err := sched.UpdateSpecialist(r.Context(), spec)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSpecialistResponse(updated))
	}
}

func toDetails(req PatientRequest) patients.Details {
	return patients.Details{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		DateOfBirth:         req.DateOfBirth,
		Notes:               req.Notes,
		LeadingSpecialistID: req.LeadingSpecialistID,
	}
}
