// Package slots builds and maintains the table of bookable time slots.
package slots

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/practice"
)

type TimeSlot struct {
	ID           uuid.UUID      `json:"id"`
	Time         string         `json:"time"`
	Venue        practice.Venue `json:"venue"`
	SpecialistID string         `json:"specialist_id"`
	Available    bool           `json:"available"`
}

func (s TimeSlot) matches(hhmm, specialistID string, venue practice.Venue) bool {
	return s.Time == hhmm && s.SpecialistID == specialistID && s.Venue.Equal(venue)
}

// Table maps a civil date to that day's slots. Dates without slots are not
// kept.
type Table map[string][]TimeSlot

// Dates returns the table's dates in ascending order.
func (t Table) Dates() []string {
	out := make([]string, 0, len(t))
	for d := range t {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (t Table) Len() int {
	n := 0
	for _, day := range t {
		n += len(day)
	}
	return n
}

func (t Table) Find(date, hhmm, specialistID string, venue practice.Venue) (TimeSlot, bool) {
	for _, s := range t[date] {
		if s.matches(hhmm, specialistID, venue) {
			return s, true
		}
	}
	return TimeSlot{}, false
}

func (t Table) add(date string, s TimeSlot) {
	t[date] = append(t[date], s)
}

// Remove drops the slot with the exact key and reports whether one existed.
func (t Table) Remove(date, hhmm, specialistID string, venue practice.Venue) bool {
	return t.removeWhere(date, func(s TimeSlot) bool { return s.matches(hhmm, specialistID, venue) }) > 0
}

// Release drops every slot of the specialist at date and time, whatever the
// venue. It is called whenever an appointment takes that key.
func (t Table) Release(date, hhmm, specialistID string) int {
	return t.removeWhere(date, func(s TimeSlot) bool {
		return s.Time == hhmm && s.SpecialistID == specialistID
	})
}

// DropSpecialist removes all of one specialist's slots.
func (t Table) DropSpecialist(specialistID string) {
	for date := range t {
		t.removeWhere(date, func(s TimeSlot) bool { return s.SpecialistID == specialistID })
	}
}

// DropBefore removes every date earlier than date.
func (t Table) DropBefore(date string) int {
	removed := 0
	for d, day := range t {
		if d < date {
			removed += len(day)
			delete(t, d)
		}
	}
	return removed
}

// DropElapsed removes the slots on date starting at or before hhmm.
func (t Table) DropElapsed(date, hhmm string) int {
	if _, ok := t[date]; !ok {
		return 0
	}
	return t.removeWhere(date, func(s TimeSlot) bool { return s.Time <= hhmm })
}

// Merge adds every slot of other that t does not hold yet.
func (t Table) Merge(other Table) {
	for date, day := range other {
		for _, s := range day {
			if _, ok := t.Find(date, s.Time, s.SpecialistID, s.Venue); !ok {
				t.add(date, s)
			}
		}
	}
}

// Clone copies the table so it can be handed out without the scheduler lock.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for d, day := range t {
		out[d] = append([]TimeSlot(nil), day...)
	}
	return out
}

func (t Table) removeWhere(date string, drop func(TimeSlot) bool) int {
	day := t[date]
	kept := day[:0]
	removed := 0
	for _, s := range day {
		if drop(s) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		delete(t, date)
	} else {
		t[date] = kept
	}
	return removed
}
