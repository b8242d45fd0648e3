// Package clock answers every "what time is it at the practice" question.
// All dates and times handled by the scheduler are civil values in a single
// practice timezone; instants are only produced here.
package clock

import (
	"fmt"
	"time"

	// the practice zone must resolve even on hosts without a zoneinfo database
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultZone = "Europe/Warsaw"
)

// Civil is a moment expressed in the practice's wall clock.
type Civil struct {
	Date    string
	Time    string
	Instant time.Time
}

type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New builds a clock for loc. A nil now func uses time.Now.
func New(loc *time.Location, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// Load resolves the named zone and returns a clock running on real time.
func Load(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return New(loc, nil), nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() Civil {
	t := c.now().In(c.loc)
	return Civil{
		Date:    t.Format(DateLayout),
		Time:    t.Format(TimeLayout),
		Instant: t,
	}
}

// ToInstant interprets date (YYYY-MM-DD) and hhmm (HH:MM) as wall-clock time
// in the practice zone.
func (c *Clock) ToInstant(date, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+hhmm, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil time %q %q: %w", date, hhmm, err)
	}
	return t, nil
}

func (c *Clock) FormatDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// IsPast reports whether the civil moment is at or before now.
func (c *Clock) IsPast(date, hhmm string) (bool, error) {
	t, err := c.ToInstant(date, hhmm)
	if err != nil {
		return false, err
	}
	return !t.After(c.now()), nil
}

func (c *Clock) Weekday(date string) (time.Weekday, error) {
	d, err := c.parseDate(date)
	if err != nil {
		return 0, err
	}
	return d.Weekday(), nil
}

// AddDays shifts a civil date by n calendar days.
func (c *Clock) AddDays(date string, n int) (string, error) {
	d, err := c.parseDate(date)
	if err != nil {
		return "", err
	}
	// noon keeps DST transitions from pushing the result onto a neighbouring day
	shifted := time.Date(d.Year(), d.Month(), d.Day()+n, 12, 0, 0, 0, c.loc)
	return shifted.Format(DateLayout), nil
}

func (c *Clock) parseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil date %q: %w", date, err)
	}
	return d, nil
}

// ValidTime reports whether s is a well formed HH:MM value.
func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ValidDate reports whether s is a well formed YYYY-MM-DD value.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
