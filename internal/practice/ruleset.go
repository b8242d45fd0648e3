package practice

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hackgods/practice-scheduling/internal/clock"
)

var (
	ErrUnknownSpecialist   = errors.New("unknown specialist")
	ErrDuplicateSpecialist = errors.New("specialist already exists")
	ErrInvalidRules        = errors.New("invalid practice rules")
)

// RuleSet is the full availability configuration. It is not safe for
// concurrent mutation; the scheduler guards it together with the rest of
// its state.
type RuleSet struct {
	Specialists  []Specialist
	Locations    []Location
	ServiceTypes []ServiceType
}

func (r *RuleSet) Specialist(id string) (Specialist, bool) {
	for _, s := range r.Specialists {
		if s.ID == id {
			return s, true
		}
	}
	return Specialist{}, false
}

func (r *RuleSet) Location(id string) (Location, bool) {
	for _, l := range r.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

func (r *RuleSet) ServiceType(id string) (ServiceType, bool) {
	for _, st := range r.ServiceTypes {
		if st.ID == id {
			return st, true
		}
	}
	return ServiceType{}, false
}

// KnownVenue reports whether v is online or a configured location.
func (r *RuleSet) KnownVenue(v Venue) bool {
	if v.IsOnline() {
		return true
	}
	_, ok := r.Location(v.LocationID())
	return ok
}

// ReplaceSpecialist swaps the stored specialist with the same ID after
// validating the new definition.
func (r *RuleSet) ReplaceSpecialist(s Specialist) error {
	idx := slices.IndexFunc(r.Specialists, func(cur Specialist) bool { return cur.ID == s.ID })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSpecialist, s.ID)
	}
	if err := r.validateSpecialist(s); err != nil {
		return err
	}
	r.Specialists[idx] = s
	return nil
}

// AddSpecialist appends a new specialist. The ID must be unused.
func (r *RuleSet) AddSpecialist(s Specialist) error {
	if s.ID == "" || s.ID == onlineToken {
		return fmt.Errorf("%w: specialist id %q missing or reserved", ErrInvalidRules, s.ID)
	}
	if _, exists := r.Specialist(s.ID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSpecialist, s.ID)
	}
	if err := r.validateSpecialist(s); err != nil {
		return err
	}
	r.Specialists = append(r.Specialists, s)
	return nil
}

// Clone returns a deep copy so callers can read rules outside the lock.
func (r *RuleSet) Clone() *RuleSet {
	out := &RuleSet{
		Specialists:  make([]Specialist, len(r.Specialists)),
		Locations:    make([]Location, len(r.Locations)),
		ServiceTypes: slices.Clone(r.ServiceTypes),
	}
	for i, s := range r.Specialists {
		s.Services = slices.Clone(s.Services)
		s.WorkDays = slices.Clone(s.WorkDays)
		s.WorkHours = slices.Clone(s.WorkHours)
		out.Specialists[i] = s
	}
	for i, l := range r.Locations {
		l.Days = slices.Clone(l.Days)
		out.Locations[i] = l
	}
	return out
}

func (r *RuleSet) Validate() error {
	seen := map[string]bool{}
	for _, st := range r.ServiceTypes {
		if st.ID == "" || seen["service:"+st.ID] {
			return fmt.Errorf("%w: service type id %q missing or duplicated", ErrInvalidRules, st.ID)
		}
		seen["service:"+st.ID] = true
	}
	for _, l := range r.Locations {
		if l.ID == "" || l.ID == onlineToken || seen["location:"+l.ID] {
			return fmt.Errorf("%w: location id %q missing, reserved or duplicated", ErrInvalidRules, l.ID)
		}
		seen["location:"+l.ID] = true
		for _, d := range l.Days {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: location %s has weekday %d", ErrInvalidRules, l.ID, d)
			}
		}
	}
	for _, s := range r.Specialists {
		if s.ID == "" || seen["specialist:"+s.ID] {
			return fmt.Errorf("%w: specialist id %q missing or duplicated", ErrInvalidRules, s.ID)
		}
		seen["specialist:"+s.ID] = true
		if err := r.validateSpecialist(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *RuleSet) validateSpecialist(s Specialist) error {
	for _, d := range s.WorkDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: specialist %s has weekday %d", ErrInvalidRules, s.ID, d)
		}
	}
	hours := make(map[string]bool, len(s.WorkHours))
	for _, h := range s.WorkHours {
		if !clock.ValidTime(h) {
			return fmt.Errorf("%w: specialist %s has work hour %q", ErrInvalidRules, s.ID, h)
		}
		if hours[h] {
			return fmt.Errorf("%w: specialist %s lists work hour %s twice", ErrInvalidRules, s.ID, h)
		}
		hours[h] = true
	}
	for _, svc := range s.Services {
		if _, ok := r.ServiceType(svc); !ok {
			return fmt.Errorf("%w: specialist %s offers unknown service %q", ErrInvalidRules, s.ID, svc)
		}
	}
	return nil
}
