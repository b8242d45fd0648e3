package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	redisclient "github.com/hackgods/practice-scheduling/internal/redis"
)

type recordingSink struct {
	mu     sync.Mutex
	events []eventlog.Event
}

func (r *recordingSink) Record(_ context.Context, ev eventlog.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// Monday 2025-08-18 10:00 in Warsaw.
func testClock(t *testing.T) *clock.Clock {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultZone)
	require.NoError(t, err)
	return clock.New(loc, func() time.Time { return time.Date(2025, 8, 18, 10, 0, 0, 0, loc) })
}

func newScheduler(t *testing.T) (*Scheduler, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s := New(Options{Clock: testClock(t), Rules: practice.Default(), HorizonDays: 30, Events: sink})
	require.NoError(t, s.Regenerate(context.Background()))
	return s, sink
}

var (
	admin = Identity{Role: appointment.RoleAdmin}
	ewa   = appointment.Contact{Name: "Ewa Nowak", Email: "ewa@example.com", Phone: "+48 600 100 200"}
)

func karinaAt(date, hhmm string, venue practice.Venue) BookingRequest {
	return BookingRequest{
		Date:          date,
		Time:          hhmm,
		SpecialistID:  "karina",
		Venue:         venue,
		ServiceTypeID: "individual",
		Patient:       ewa,
	}
}

func TestBookTakesSlotAcrossVenues(t *testing.T) {
	s, sink := newScheduler(t)
	ctx := context.Background()

	a, err := s.Book(ctx, karinaAt("2025-08-19", "09:00", practice.Physical("morcinka")))
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPending, a.Status)
	assert.Equal(t, appointment.RolePatient, a.BookedBy)
	assert.False(t, a.PaymentVerified)

	table := s.AllSlots()
	_, ok := table.Find("2025-08-19", "09:00", "karina", practice.Physical("morcinka"))
	assert.False(t, ok)
	_, ok = table.Find("2025-08-19", "09:00", "karina", practice.Online())
	assert.False(t, ok)

	assert.Equal(t, []string{eventlog.EventAppointmentCreated}, sink.types())
}

func TestDoubleBookingConflictsRegardlessOfVenue(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	_, err := s.Book(ctx, karinaAt("2025-08-19", "09:00", practice.Physical("morcinka")))
	require.NoError(t, err)

	_, err = s.Book(ctx, karinaAt("2025-08-19", "09:00", practice.Online()))
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)

	_, err = s.AdminBook(ctx, admin, AdminBookingRequest{
		NewPatient:    &patients.Details{FirstName: "Jan", LastName: "Nowak", Email: "jan@example.com"},
		Date:          "2025-08-19",
		Time:          "09:00",
		SpecialistID:  "karina",
		Venue:         practice.Physical("listopada"),
		ServiceTypeID: "individual",
	})
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)
	assert.Empty(t, s.Patients(), "a failed admin booking creates no patient")
}

func TestBookValidation(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"elapsed", karinaAt("2025-08-15", "09:00", practice.Online()), appointment.ErrPastSlot},
		{"not on offer", karinaAt("2025-08-19", "08:00", practice.Online()), appointment.ErrNotFound},
		{"location closed that day", karinaAt("2025-08-19", "09:00", practice.Physical("listopada")), appointment.ErrNotFound},
		{"unknown location", karinaAt("2025-08-19", "09:00", practice.Physical("warszawa")), appointment.ErrNotFound},
		{"no venue", karinaAt("2025-08-19", "09:00", practice.Venue{}), appointment.ErrInvalidInput},
		{"bad time", karinaAt("2025-08-19", "9", practice.Online()), appointment.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Book(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("service not offered", func(t *testing.T) {
		req := karinaAt("2025-08-19", "09:00", practice.Online())
		req.ServiceTypeID = "sexologist"
		_, err := s.Book(ctx, req)
		assert.ErrorIs(t, err, appointment.ErrNotFound)
	})

	t.Run("missing patient", func(t *testing.T) {
		req := karinaAt("2025-08-19", "09:00", practice.Online())
		req.Patient = appointment.Contact{}
		_, err := s.Book(ctx, req)
		assert.ErrorIs(t, err, appointment.ErrInvalidInput)
	})

	assert.Empty(t, s.Appointments(admin))
}

func TestBookThenAddSlotAtSameKeyConflicts(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	_, err := s.Book(ctx, karinaAt("2025-08-19", "09:00", practice.Physical("morcinka")))
	require.NoError(t, err)

	_, err = s.AddSlot(ctx, "2025-08-19", "09:00", practice.Physical("morcinka"), "karina")
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	s, _ := newScheduler(t)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		venue := practice.Physical("morcinka")
		if i%2 == 1 {
			venue = practice.Online()
		}
		wg.Add(1)
		go func(v practice.Venue) {
			defer wg.Done()
			_, err := s.Book(context.Background(), karinaAt("2025-08-20", "11:00", v))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, appointment.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(venue)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestAdminBookStatusDependsOnTime(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	p, err := s.CreatePatient(ctx, patients.Details{FirstName: "Anna", LastName: "Kowalska", Email: "anna.kowalska@example.com"})
	require.NoError(t, err)

	future, err := s.AdminBook(ctx, admin, AdminBookingRequest{
		PatientID:     p.ID,
		Date:          "2025-08-22",
		Time:          "07:00",
		SpecialistID:  "karina",
		Venue:         practice.Online(),
		ServiceTypeID: "social_skills",
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, future.Status)
	assert.Equal(t, appointment.RoleAdmin, future.BookedBy)
	assert.Equal(t, "anna.kowalska@example.com", future.Patient.Email)

	history, err := s.AdminBook(ctx, Identity{Role: appointment.RoleSpecialist, SpecialistID: "ada"}, AdminBookingRequest{
		PatientID:     p.ID,
		Date:          "2025-07-01",
		Time:          "17:00",
		SpecialistID:  "ada",
		Venue:         practice.Physical("morcinka"),
		ServiceTypeID: "sexologist",
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, history.Status)
	assert.Equal(t, appointment.RoleSpecialist, history.BookedBy)
}

func TestAdminBookReleasesSlotsAndCreatesPatient(t *testing.T) {
	s, sink := newScheduler(t)
	ctx := context.Background()

	a, err := s.AdminBook(ctx, admin, AdminBookingRequest{
		NewPatient:    &patients.Details{FirstName: "Piotr", LastName: "Wiśniewski", Email: "piotr@example.com"},
		Date:          "2025-08-19",
		Time:          "17:00",
		SpecialistID:  "ada",
		Venue:         practice.Online(),
		ServiceTypeID: "sexologist",
	})
	require.NoError(t, err)
	assert.Equal(t, "Piotr Wiśniewski", a.Patient.Name)

	_, ok := s.AllSlots().Find("2025-08-19", "17:00", "ada", practice.Physical("morcinka"))
	assert.False(t, ok)
	require.Len(t, s.Patients(), 1)
	assert.Equal(t, []string{eventlog.EventPatientCreated, eventlog.EventAppointmentCreated}, sink.types())

	_, err = s.AdminBook(ctx, admin, AdminBookingRequest{
		NewPatient:    &patients.Details{FirstName: "P", LastName: "W", Email: "PIOTR@example.com"},
		Date:          "2025-08-22",
		Time:          "17:00",
		SpecialistID:  "ada",
		Venue:         practice.Online(),
		ServiceTypeID: "sexologist",
	})
	assert.ErrorIs(t, err, appointment.ErrDuplicatePatient)
}

func TestAdminBookInputChecks(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()
	base := AdminBookingRequest{
		PatientID:     uuid.New(),
		Date:          "2025-08-19",
		Time:          "09:00",
		SpecialistID:  "karina",
		Venue:         practice.Online(),
		ServiceTypeID: "individual",
	}

	_, err := s.AdminBook(ctx, Identity{Role: appointment.RolePatient}, base)
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)

	_, err = s.AdminBook(ctx, admin, base)
	assert.ErrorIs(t, err, appointment.ErrNotFound, "unknown patient")

	both := base
	both.NewPatient = &patients.Details{Email: "x@example.com"}
	_, err = s.AdminBook(ctx, admin, both)
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)

	neither := base
	neither.PatientID = uuid.Nil
	_, err = s.AdminBook(ctx, admin, neither)
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)
}

func TestApprovalAndPaymentFlow(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	a, err := s.Book(ctx, karinaAt("2025-08-20", "10:00", practice.Online()))
	require.NoError(t, err)

	a, err = s.Approve(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPendingPayment, a.Status)

	a, err = s.RecordPayment(ctx, a.ID, "blik")
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPendingPayment, a.Status, "patient payment never confirms on its own")
	assert.False(t, a.PaymentVerified)

	a, err = s.ConfirmPayment(ctx, a.ID, "blik")
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, a.Status)
	assert.True(t, a.PaymentVerified)
	assert.Equal(t, "blik", a.PaymentMethod)

	_, err = s.RecordPayment(ctx, a.ID, "")
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)
}

func TestMarkCompletedOnFutureIsRejectedWithoutChange(t *testing.T) {
	s, sink := newScheduler(t)
	ctx := context.Background()

	a, err := s.Book(ctx, karinaAt("2025-08-20", "10:00", practice.Online()))
	require.NoError(t, err)

	_, err = s.MarkCompleted(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrInvalidTransition)
	_, err = s.MarkNoShow(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrInvalidTransition)

	after, err := s.Appointment(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, after)
	assert.Equal(t, []string{eventlog.EventAppointmentCreated}, sink.types())
}

func TestRejectAndReviveKeepsTableConsistent(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	a, err := s.Book(ctx, karinaAt("2025-08-20", "10:00", practice.Online()))
	require.NoError(t, err)

	_, err = s.Reject(ctx, a.ID)
	require.NoError(t, err)
	_, ok := s.AllSlots().Find("2025-08-20", "10:00", "karina", practice.Online())
	assert.False(t, ok, "rejection does not put the slot back on offer")

	_, err = s.AddSlot(ctx, "2025-08-20", "10:00", practice.Online(), "karina")
	require.NoError(t, err)

	revived, err := s.SetStatus(ctx, a.ID, appointment.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, revived.Status)
	_, ok = s.AllSlots().Find("2025-08-20", "10:00", "karina", practice.Online())
	assert.False(t, ok, "the revived appointment takes the key back")
}

func TestReconcileYesterdayConfirmed(t *testing.T) {
	s, sink := newScheduler(t)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, s.Restore(context.Background(), nil, []appointment.Appointment{{
		ID:            id,
		Date:          "2025-08-17",
		Time:          "12:00",
		Status:        appointment.StatusConfirmed,
		Patient:       ewa,
		SpecialistID:  "katarzyna",
		Venue:         practice.Online(),
		ServiceTypeID: "social_skills",
		BookedBy:      appointment.RoleAdmin,
	}}))

	corrections, err := s.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, appointment.StatusConfirmed, corrections[0].From)
	assert.Equal(t, appointment.StatusCompleted, corrections[0].To)

	a, err := s.Appointment(id)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, a.Status)

	again, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Contains(t, sink.types(), eventlog.EventAppointmentReconciled)
}

func TestAppointmentsVisibility(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	_, err := s.Book(ctx, karinaAt("2025-08-20", "10:00", practice.Online()))
	require.NoError(t, err)
	adaReq := karinaAt("2025-08-19", "18:00", practice.Online())
	adaReq.SpecialistID = "ada"
	adaReq.ServiceTypeID = "sexologist"
	adaReq.Patient = appointment.Contact{Name: "Jan Nowak", Email: "jan@example.com"}
	_, err = s.Book(ctx, adaReq)
	require.NoError(t, err)

	assert.Len(t, s.Appointments(admin), 2)
	assert.Len(t, s.Appointments(Identity{Role: appointment.RoleSpecialist, SpecialistID: "ada"}), 1)
	assert.Len(t, s.Appointments(Identity{Role: appointment.RolePatient, Email: "EWA@example.com"}), 1)
	assert.Empty(t, s.Appointments(Identity{Role: appointment.RolePatient}))
	assert.Empty(t, s.Appointments(Identity{Role: "guest"}))
}

func TestDeletePatientBlockedByAppointments(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	p, err := s.CreatePatient(ctx, patients.Details{FirstName: "Ewa", LastName: "Nowak", Email: ewa.Email})
	require.NoError(t, err)
	_, err = s.Book(ctx, karinaAt("2025-08-20", "10:00", practice.Online()))
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeletePatient(ctx, p.ID), appointment.ErrInUse)

	other, err := s.CreatePatient(ctx, patients.Details{FirstName: "Jan", LastName: "Nowak", Email: "jan@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.DeletePatient(ctx, other.ID))

	_, err = s.UpdatePatient(ctx, p.ID, patients.Details{FirstName: "Ewa", LastName: "Nowak", Email: "ewa.n@example.com"})
	require.NoError(t, err)
}

func TestUpdateSpecialistRebuildsTheirSlots(t *testing.T) {
	s, _ := newScheduler(t)
	ctx := context.Background()

	_, err := s.AddSlot(ctx, "2025-08-21", "07:00", practice.Online(), "karina")
	require.NoError(t, err)

	ada := s.Rules().Specialists[1]
	require.Equal(t, "ada", ada.ID)
	ada.WorkDays = []time.Weekday{time.Monday}
	_, err = s.UpdateSpecialist(ctx, ada)
	require.NoError(t, err)

	table := s.AllSlots()
	_, ok := table.Find("2025-08-19", "17:00", "ada", practice.Online())
	assert.False(t, ok, "Tuesday no longer worked")
	_, ok = table.Find("2025-08-25", "17:00", "ada", practice.Physical("morcinka"))
	assert.True(t, ok, "Monday now worked")
	_, ok = table.Find("2025-08-21", "07:00", "karina", practice.Online())
	assert.True(t, ok, "other specialists keep their manual slots")

	_, err = s.UpdateSpecialist(ctx, practice.Specialist{ID: "ghost"})
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	ada.WorkHours = []string{"noon"}
	_, err = s.UpdateSpecialist(ctx, ada)
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)

	ada.WorkHours = []string{"17:00", "17:00"}
	_, err = s.UpdateSpecialist(ctx, ada)
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)
}

func TestDeleteSlot(t *testing.T) {
	s, sink := newScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteSlot(ctx, "2025-08-19", "09:00", "karina", practice.Online()))
	assert.ErrorIs(t, s.DeleteSlot(ctx, "2025-08-19", "09:00", "karina", practice.Online()), appointment.ErrNotFound)
	assert.Equal(t, []string{eventlog.EventSlotDeleted}, sink.types())
}

type busyLocker struct{}

func (busyLocker) WithSlotLock(context.Context, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func TestBusyLockReportsConflict(t *testing.T) {
	s := New(Options{Clock: testClock(t), Locker: busyLocker{}})
	require.NoError(t, s.Regenerate(context.Background()))

	_, err := s.Book(context.Background(), karinaAt("2025-08-19", "09:00", practice.Online()))
	require.ErrorIs(t, err, appointment.ErrSlotConflict)

	var typed *appointment.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, "busy", typed.Fields["lock"])
}
