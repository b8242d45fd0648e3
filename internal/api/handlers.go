package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/scheduling"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

func listSpecialistsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules := sched.Rules()
		out := make([]SpecialistResponse, 0, len(rules.Specialists))
		for _, s := range rules.Specialists {
			out = append(out, toSpecialistResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listLocationsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules := sched.Rules()
		out := make([]LocationResponse, 0, len(rules.Locations))
		for _, l := range rules.Locations {
			out = append(out, LocationResponse{ID: l.ID, Name: l.Name, Address: l.Address, Days: weekdayInts(l.Days)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listServiceTypesHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules := sched.Rules()
		out := make([]ServiceTypeResponse, 0, len(rules.ServiceTypes))
		for _, st := range rules.ServiceTypes {
			out = append(out, ServiceTypeResponse(st))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listSlotsHandler serves GET /slots?specialist_id=&location=&service_type_id=
func listSlotsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sess := sched.NewSession(GetIdentity(r.Context()))

		if err := selectAll(sess, q.Get("specialist_id"), q.Get("location"), q.Get("service_type_id")); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotsResponse(sess.RequestSlots()))
	}
}

func createAppointmentHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		sess := sched.NewSession(GetIdentity(r.Context()))
		if err := selectAll(sess, req.SpecialistID, req.Location, req.ServiceTypeID); err != nil {
			handleDomainError(w, err)
			return
		}

		appt, err := sess.Book(r.Context(), req.Date, req.Time, appointment.Contact{
			Name:  req.Patient.Name,
			Email: req.Patient.Email,
			Phone: req.Patient.Phone,
		}, req.Notes)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, appt)
	}
}

func listAppointmentsHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := sched.Appointments(GetIdentity(r.Context()))
		if list == nil {
			list = []appointment.Appointment{}
		}
		writeJSON(w, http.StatusOK, AppointmentsResponse{Appointments: list})
	}
}

func getAppointmentHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		appt, err := sched.Appointment(id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if !canSee(GetIdentity(r.Context()), appt) {
			// same answer as a missing record so ids cannot be probed
			handleDomainError(w, appointment.NewError(appointment.KindNotFound, "get appointment", "appointment_id", id.String()))
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func recordPaymentHandler(sched *scheduling.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req PaymentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		appt, err := sched.Appointment(id)
		if err == nil && !canSee(GetIdentity(r.Context()), appt) {
			err = appointment.NewError(appointment.KindNotFound, "record payment", "appointment_id", id.String())
		}
		if err == nil {
			appt, err = sched.RecordPayment(r.Context(), id, req.Method)
		}
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func canSee(who scheduling.Identity, a appointment.Appointment) bool {
	switch who.Role {
	case appointment.RoleAdmin:
		return true
	case appointment.RoleSpecialist:
		return who.SpecialistID == a.SpecialistID
	default:
		return who.Email != "" && strings.EqualFold(who.Email, a.Patient.Email)
	}
}

// selectAll applies selections in the order a visitor makes them, so a
// service the specialist does not offer clears the specialist.
func selectAll(sess *scheduling.Session, specialistID, location, serviceTypeID string) error {
	if err := sess.SelectSpecialist(specialistID); err != nil {
		return err
	}
	if location != "" {
		venue, err := practice.ParseVenue(location)
		if err != nil {
			return appointment.NewError(appointment.KindInvalidInput, "select location", "location", location)
		}
		if err := sess.SelectLocation(venue); err != nil {
			return err
		}
	}
	return sess.SelectServiceType(serviceTypeID)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", map[string]string{"id": chi.URLParam(r, "id")})
		return uuid.Nil, false
	}
	return id, true
}

func toSlotsResponse(table slots.Table) SlotsResponse {
	resp := SlotsResponse{Days: make([]DaySlots, 0, len(table))}
	for _, date := range table.Dates() {
		day := append([]slots.TimeSlot(nil), table[date]...)
		sort.SliceStable(day, func(i, j int) bool {
			if day[i].Time != day[j].Time {
				return day[i].Time < day[j].Time
			}
			return day[i].Venue.String() < day[j].Venue.String()
		})
		resp.Days = append(resp.Days, DaySlots{Date: date, Slots: day})
	}
	return resp
}

func toSpecialistResponse(s practice.Specialist) SpecialistResponse {
	return SpecialistResponse{
		ID:              s.ID,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		Title:           s.Title,
		Services:        s.Services,
		WorkDays:        weekdayInts(s.WorkDays),
		WorkHours:       s.WorkHours,
		OnlineAvailable: s.OnlineAvailable,
	}
}

func weekdayInts(days []time.Weekday) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}
