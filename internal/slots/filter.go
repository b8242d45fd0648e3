package slots

import "github.com/hackgods/practice-scheduling/internal/practice"

// Selection is what a visitor has picked so far. Only the specialist is
// mandatory; a zero Venue or empty ServiceTypeID means "any".
type Selection struct {
	SpecialistID  string
	Venue         practice.Venue
	ServiceTypeID string
}

// Filter returns a new table holding the slots visible for sel.
func Filter(table Table, rules *practice.RuleSet, sel Selection) Table {
	out := Table{}
	if sel.SpecialistID == "" {
		return out
	}
	if sel.ServiceTypeID != "" {
		spec, ok := rules.Specialist(sel.SpecialistID)
		if !ok || !spec.Offers(sel.ServiceTypeID) {
			return out
		}
	}

	for date, day := range table {
		for _, s := range day {
			if s.SpecialistID != sel.SpecialistID {
				continue
			}
			if !sel.Venue.IsZero() && !s.Venue.Equal(sel.Venue) {
				continue
			}
			out.add(date, s)
		}
	}
	return out
}
