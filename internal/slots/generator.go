package slots

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

const DefaultHorizonDays = 30

// Generator derives the slot table from the availability rules for the days
// after today, skipping keys already held by a live appointment.
type Generator struct {
	rules   *practice.RuleSet
	appts   *appointment.Store
	clock   *clock.Clock
	horizon int
}

func NewGenerator(rules *practice.RuleSet, appts *appointment.Store, c *clock.Clock, horizonDays int) *Generator {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Generator{rules: rules, appts: appts, clock: c, horizon: horizonDays}
}

func (g *Generator) Horizon() int {
	return g.horizon
}

func (g *Generator) Generate() (Table, error) {
	return g.generate(allSpecialists, "")
}

// GenerateFor builds the same table restricted to one specialist.
func (g *Generator) GenerateFor(specialistID string) (Table, error) {
	return g.generate(func(s practice.Specialist) bool { return s.ID == specialistID }, "")
}

// GenerateAfter builds only the horizon days later than date. It extends a
// table that was built on an earlier day.
func (g *Generator) GenerateAfter(date string) (Table, error) {
	return g.generate(allSpecialists, date)
}

func allSpecialists(practice.Specialist) bool { return true }

func (g *Generator) generate(include func(practice.Specialist) bool, after string) (Table, error) {
	table := Table{}
	today := g.clock.Now().Date

	for offset := 1; offset <= g.horizon; offset++ {
		date, err := g.clock.AddDays(today, offset)
		if err != nil {
			return nil, fmt.Errorf("generate slots: %w", err)
		}
		if date <= after {
			continue
		}
		weekday, err := g.clock.Weekday(date)
		if err != nil {
			return nil, fmt.Errorf("generate slots: %w", err)
		}

		for _, spec := range g.rules.Specialists {
			if !include(spec) || !spec.WorksOn(weekday) {
				continue
			}
			for _, hhmm := range spec.WorkHours {
				if _, held := g.appts.LiveAt(date, hhmm, spec.ID); held {
					continue
				}
				for _, loc := range g.rules.Locations {
					if loc.OpenOn(weekday) {
						table.add(date, newSlot(hhmm, spec.ID, practice.Physical(loc.ID)))
					}
				}
				if spec.OnlineAvailable {
					table.add(date, newSlot(hhmm, spec.ID, practice.Online()))
				}
			}
		}
	}
	return table, nil
}

func newSlot(hhmm, specialistID string, venue practice.Venue) TimeSlot {
	return TimeSlot{
		ID:           uuid.New(),
		Time:         hhmm,
		Venue:        venue,
		SpecialistID: specialistID,
		Available:    true,
	}
}
