// Package practice holds the availability rules of the practice: who works
// when, which rooms are staffed on which weekdays and what can be booked.
package practice

import (
	"slices"
	"time"
)

type Specialist struct {
	ID              string
	FirstName       string
	LastName        string
	Title           string
	Services        []string
	WorkDays        []time.Weekday
	WorkHours       []string
	OnlineAvailable bool
}

func (s Specialist) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s Specialist) WorksOn(d time.Weekday) bool {
	return slices.Contains(s.WorkDays, d)
}

func (s Specialist) Offers(serviceTypeID string) bool {
	return slices.Contains(s.Services, serviceTypeID)
}

type Location struct {
	ID      string
	Name    string
	Address string
	Days    []time.Weekday
}

func (l Location) OpenOn(d time.Weekday) bool {
	return slices.Contains(l.Days, d)
}

// ServiceType is informational; it never constrains slot times.
type ServiceType struct {
	ID              string
	Name            string
	DurationMinutes int
	PricePLN        int
	MultiSession    bool
	MinSessions     int
}
