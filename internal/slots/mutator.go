package slots

import (
	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

// Mutator applies staff edits to a slot table.
type Mutator struct {
	rules *practice.RuleSet
	appts *appointment.Store
	clock *clock.Clock
}

func NewMutator(rules *practice.RuleSet, appts *appointment.Store, c *clock.Clock) *Mutator {
	return &Mutator{rules: rules, appts: appts, clock: c}
}

// Add inserts a manual slot. Working hours are not enforced, and online
// slots may be added for specialists who are not normally online.
func (m *Mutator) Add(table Table, date, hhmm string, venue practice.Venue, specialistID string) (TimeSlot, error) {
	const op = "add slot"

	spec, ok := m.rules.Specialist(specialistID)
	if !ok {
		return TimeSlot{}, appointment.NewError(appointment.KindNotFound, op, "specialist_id", specialistID)
	}
	if venue.IsZero() || !clock.ValidDate(date) || !clock.ValidTime(hhmm) {
		return TimeSlot{}, appointment.NewError(appointment.KindInvalidInput, op,
			"date", date, "time", hhmm, "venue", venue.String())
	}

	past, err := m.clock.IsPast(date, hhmm)
	if err != nil {
		return TimeSlot{}, appointment.NewError(appointment.KindInvalidInput, op, "date", date, "time", hhmm)
	}
	now := m.clock.Now()
	if past || (date == now.Date && hhmm <= now.Time) {
		return TimeSlot{}, appointment.NewError(appointment.KindPastSlot, op,
			"date", date, "time", hhmm, "now", now.Date+" "+now.Time)
	}

	if held, ok := m.appts.LiveAt(date, hhmm, specialistID); ok {
		return TimeSlot{}, appointment.NewError(appointment.KindSlotConflict, op,
			"date", date, "time", hhmm, "specialist_id", specialistID, "appointment_id", held.ID.String())
	}
	if existing, ok := table.Find(date, hhmm, specialistID, venue); ok {
		return TimeSlot{}, appointment.NewError(appointment.KindSlotConflict, op,
			"date", date, "time", hhmm, "specialist_id", specialistID, "slot_id", existing.ID.String())
	}

	weekday, err := m.clock.Weekday(date)
	if err != nil {
		return TimeSlot{}, appointment.NewError(appointment.KindInvalidInput, op, "date", date)
	}

	var loc practice.Location
	if !venue.IsOnline() {
		loc, ok = m.rules.Location(venue.LocationID())
		if !ok {
			return TimeSlot{}, appointment.NewError(appointment.KindNotFound, op, "location_id", venue.LocationID())
		}
	}
	if !spec.WorksOn(weekday) {
		return TimeSlot{}, appointment.NewError(appointment.KindScheduleViolation, op,
			"specialist_id", specialistID, "weekday", weekday.String())
	}
	if !venue.IsOnline() && !loc.OpenOn(weekday) {
		return TimeSlot{}, appointment.NewError(appointment.KindScheduleViolation, op,
			"location_id", loc.ID, "weekday", weekday.String())
	}

	slot := newSlot(hhmm, specialistID, venue)
	table.add(date, slot)
	return slot, nil
}

func (m *Mutator) Delete(table Table, date, hhmm, specialistID string, venue practice.Venue) error {
	const op = "delete slot"

	if _, ok := m.rules.Specialist(specialistID); !ok {
		return appointment.NewError(appointment.KindNotFound, op, "specialist_id", specialistID)
	}
	if !table.Remove(date, hhmm, specialistID, venue) {
		return appointment.NewError(appointment.KindNotFound, op,
			"date", date, "time", hhmm, "specialist_id", specialistID, "venue", venue.String())
	}
	return nil
}
