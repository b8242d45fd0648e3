// Package seed produces and reads the JSON fixture the API server restores
// its patients, appointments and reviews from.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/reviews"
)

type Fixture struct {
	Patients     []patients.Patient        `json:"patients"`
	Appointments []appointment.Appointment `json:"appointments"`
	Reviews      []reviews.Review          `json:"reviews,omitempty"`
}

type Options struct {
	Seed     uint64
	Patients int
	// PastDays and FutureDays bound the booked dates around today.
	PastDays   int
	FutureDays int
	// Density is the percentage of working hours that get booked.
	Density int
}

func DefaultOptions() Options {
	return Options{Seed: 1, Patients: 40, PastDays: 30, FutureDays: 14, Density: 35}
}

var (
	pastStatuses   = []appointment.Status{appointment.StatusCompleted, appointment.StatusCompleted, appointment.StatusCompleted, appointment.StatusNoShow, appointment.StatusRejected}
	futureStatuses = []appointment.Status{appointment.StatusPending, appointment.StatusPendingPayment, appointment.StatusConfirmed, appointment.StatusConfirmed}
)

// Generate builds a fixture that respects the rules: every appointment falls
// on a working hour of its specialist at a venue open that day, and no
// (date, time, specialist) key is used twice.
func Generate(rules *practice.RuleSet, c *clock.Clock, opts Options) (Fixture, error) {
	f := gofakeit.New(opts.Seed)
	now := c.Now()

	var fx Fixture
	for i := 0; i < opts.Patients; i++ {
		first, last := f.FirstName(), f.LastName()
		fx.Patients = append(fx.Patients, patients.Patient{
			ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("patient-%d-%d", opts.Seed, i))),
			FirstName:    first,
			LastName:     last,
			Email:        fmt.Sprintf("%s.%s.%d@example.com", emailPart(first), emailPart(last), i),
			Phone:        f.Phone(),
			DateOfBirth:  c.FormatDate(f.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC))),
			RegisteredAt: now.Instant.AddDate(0, 0, -opts.PastDays-f.Number(1, 365)),
		})
	}
	if len(fx.Patients) == 0 {
		return fx, nil
	}

	for offset := -opts.PastDays; offset <= opts.FutureDays; offset++ {
		date, err := c.AddDays(now.Date, offset)
		if err != nil {
			return Fixture{}, err
		}
		weekday, err := c.Weekday(date)
		if err != nil {
			return Fixture{}, err
		}

		for _, spec := range rules.Specialists {
			if !spec.WorksOn(weekday) || len(spec.Services) == 0 {
				continue
			}
			venues := venuesOn(rules, spec, weekday)
			if len(venues) == 0 {
				continue
			}
			for _, hhmm := range spec.WorkHours {
				if f.Number(0, 99) >= opts.Density {
					continue
				}
				past, err := c.IsPast(date, hhmm)
				if err != nil {
					return Fixture{}, err
				}
				statuses := futureStatuses
				if past {
					statuses = pastStatuses
				}
				status := statuses[f.Number(0, len(statuses)-1)]
				p := fx.Patients[f.Number(0, len(fx.Patients)-1)]

				a := appointment.Appointment{
					ID:              uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("appt-%d-%s-%s-%s", opts.Seed, date, hhmm, spec.ID))),
					Date:            date,
					Time:            hhmm,
					Status:          status,
					Patient:         p.Contact(),
					SpecialistID:    spec.ID,
					Venue:           venues[f.Number(0, len(venues)-1)],
					ServiceTypeID:   spec.Services[f.Number(0, len(spec.Services)-1)],
					PaymentVerified: status == appointment.StatusConfirmed || status == appointment.StatusCompleted,
					BookedBy:        appointment.RolePatient,
				}
				if a.PaymentVerified {
					a.PaymentMethod = []string{"blik", "transfer", "cash"}[f.Number(0, 2)]
				}
				if f.Number(0, 4) == 0 {
					a.BookedBy = appointment.RoleAdmin
				}
				fx.Appointments = append(fx.Appointments, a)
			}
		}
	}

	for i := 0; i < len(fx.Patients)/4; i++ {
		p := fx.Patients[f.Number(0, len(fx.Patients)-1)]
		r := reviews.Review{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("review-%d-%d", opts.Seed, i))),
			Author:      p.FirstName + " " + p.LastName[:1] + ".",
			Rating:      f.Number(3, 5),
			Text:        f.Sentence(12),
			SubmittedAt: now.Instant.AddDate(0, 0, -f.Number(1, opts.PastDays+1)),
			Approved:    f.Number(0, 3) > 0,
			Source:      reviews.SourceInternal,
		}
		if f.Number(0, 2) == 0 {
			r.Source = reviews.SourceZnanyLekarz
			r.Approved = true
		}
		fx.Reviews = append(fx.Reviews, r)
	}
	return fx, nil
}

func venuesOn(rules *practice.RuleSet, spec practice.Specialist, d time.Weekday) []practice.Venue {
	var out []practice.Venue
	if spec.OnlineAvailable {
		out = append(out, practice.Online())
	}
	for _, loc := range rules.Locations {
		if loc.OpenOn(d) {
			out = append(out, practice.Physical(loc.ID))
		}
	}
	return out
}

func emailPart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, s)
}

func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return fx, nil
}

func Save(path string, fx Fixture) error {
	data, err := json.MarshalIndent(fx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}
