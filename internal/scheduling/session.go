package scheduling

import (
	"context"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

// Session carries one visitor's choices through the booking flow.
type Session struct {
	sched *Scheduler
	who   Identity
	sel   slots.Selection
}

func (s *Scheduler) NewSession(who Identity) *Session {
	return &Session{sched: s, who: who}
}

func (ss *Session) Selection() slots.Selection {
	return ss.sel
}

func (ss *Session) SelectSpecialist(id string) error {
	if id == "" {
		ss.sel.SpecialistID = ""
		return nil
	}
	rules := ss.sched.Rules()
	if _, ok := rules.Specialist(id); !ok {
		return appointment.NewError(appointment.KindNotFound, "select specialist", "specialist_id", id)
	}
	ss.sel.SpecialistID = id
	return nil
}

// SelectLocation picks a venue; the zero Venue clears the choice.
func (ss *Session) SelectLocation(v practice.Venue) error {
	if !v.IsZero() && !ss.sched.Rules().KnownVenue(v) {
		return appointment.NewError(appointment.KindNotFound, "select location", "location_id", v.LocationID())
	}
	ss.sel.Venue = v
	return nil
}

// SelectServiceType picks a service. A previously chosen specialist who
// does not offer it is deselected.
func (ss *Session) SelectServiceType(id string) error {
	if id == "" {
		ss.sel.ServiceTypeID = ""
		return nil
	}
	rules := ss.sched.Rules()
	if _, ok := rules.ServiceType(id); !ok {
		return appointment.NewError(appointment.KindNotFound, "select service type", "service_type_id", id)
	}
	ss.sel.ServiceTypeID = id
	if ss.sel.SpecialistID != "" {
		if spec, ok := rules.Specialist(ss.sel.SpecialistID); !ok || !spec.Offers(id) {
			ss.sel.SpecialistID = ""
		}
	}
	return nil
}

func (ss *Session) RequestSlots() slots.Table {
	return ss.sched.Slots(ss.sel)
}

// Book books the selected specialist, venue and service at date and time.
// When the caller is a signed-in patient their email is used if the form
// left it empty.
func (ss *Session) Book(ctx context.Context, date, hhmm string, patient appointment.Contact, notes string) (appointment.Appointment, error) {
	switch {
	case ss.sel.SpecialistID == "":
		return appointment.Appointment{}, appointment.NewError(appointment.KindInvalidInput, "book", "field", "specialist")
	case ss.sel.Venue.IsZero():
		return appointment.Appointment{}, appointment.NewError(appointment.KindInvalidInput, "book", "field", "venue")
	case ss.sel.ServiceTypeID == "":
		return appointment.Appointment{}, appointment.NewError(appointment.KindInvalidInput, "book", "field", "service_type")
	}
	if patient.Email == "" && ss.who.Role == appointment.RolePatient {
		patient.Email = ss.who.Email
	}

	return ss.sched.Book(ctx, BookingRequest{
		Date:          date,
		Time:          hhmm,
		SpecialistID:  ss.sel.SpecialistID,
		Venue:         ss.sel.Venue,
		ServiceTypeID: ss.sel.ServiceTypeID,
		Patient:       patient,
		Notes:         notes,
	})
}
