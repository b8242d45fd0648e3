package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

type fixture struct {
	clock *clock.Clock
	rules *practice.RuleSet
	appts *appointment.Store
}

// Monday 2025-08-18 10:00 in Warsaw, default practice rules.
func newFixture(t *testing.T) fixture {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultZone)
	require.NoError(t, err)
	c := clock.New(loc, func() time.Time { return time.Date(2025, 8, 18, 10, 0, 0, 0, loc) })
	return fixture{clock: c, rules: practice.Default(), appts: appointment.NewStore(c)}
}

func (f fixture) book(t *testing.T, date, hhmm, specialistID string, venue practice.Venue, status appointment.Status) appointment.Appointment {
	t.Helper()
	a, err := f.appts.Insert(appointment.Appointment{
		Date:          date,
		Time:          hhmm,
		Status:        status,
		SpecialistID:  specialistID,
		Venue:         venue,
		ServiceTypeID: "individual",
		Patient:       appointment.Contact{Name: "Ewa Nowak", Email: "ewa@example.com"},
		BookedBy:      appointment.RolePatient,
	})
	require.NoError(t, err)
	return a
}
