package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

// Monday 2025-08-18 10:00 in Warsaw.
func testClock(t *testing.T) *clock.Clock {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultZone)
	require.NoError(t, err)
	return clock.New(loc, func() time.Time { return time.Date(2025, 8, 18, 10, 0, 0, 0, loc) })
}

func newAppointment(date, hhmm string, status Status) Appointment {
	return Appointment{
		Date:          date,
		Time:          hhmm,
		Status:        status,
		Patient:       Contact{Name: "Jan Kowalski", Email: "jan@example.com", Phone: "+48 500 000 000"},
		SpecialistID:  "karina",
		Venue:         practice.Physical("morcinka"),
		ServiceTypeID: "individual",
		BookedBy:      RolePatient,
	}
}

func TestInsertAssignsIdentityAndTimestamps(t *testing.T) {
	s := NewStore(testClock(t))

	a, err := s.Insert(newAppointment("2025-08-19", "09:00", StatusPending))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestInsertRejectsSecondLiveAppointmentForKey(t *testing.T) {
	s := NewStore(testClock(t))

	_, err := s.Insert(newAppointment("2025-08-19", "09:00", StatusPending))
	require.NoError(t, err)

	online := newAppointment("2025-08-19", "09:00", StatusPending)
	online.Venue = practice.Online()
	_, err = s.Insert(online)
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, KindSlotConflict, KindOf(err))

	rejected := newAppointment("2025-08-19", "09:00", StatusRejected)
	_, err = s.Insert(rejected)
	assert.NoError(t, err, "rejected records do not hold the key")
	assert.Equal(t, 2, s.Len())
}

func TestInsertValidatesShape(t *testing.T) {
	s := NewStore(testClock(t))

	_, err := s.Insert(newAppointment("2025-08-32", "09:00", StatusPending))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Insert(newAppointment("2025-08-19", "09:00", Status("waiting")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	a, err := s.Insert(newAppointment("2025-08-19", "09:00", StatusPending))
	require.NoError(t, err)
	dup := newAppointment("2025-08-20", "09:00", StatusPending)
	dup.ID = a.ID
	_, err = s.Insert(dup)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPaymentFlow(t *testing.T) {
	s := NewStore(testClock(t))
	a, err := s.Insert(newAppointment("2025-08-19", "09:00", StatusPending))
	require.NoError(t, err)

	_, err = s.ConfirmPayment(a.ID, "blik")
	assert.ErrorIs(t, err, ErrInvalidTransition, "payment cannot be confirmed before approval")

	approved, err := s.Approve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, approved.Status)

	recorded, err := s.RecordPayment(a.ID, "transfer")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, recorded.Status)
	assert.Equal(t, "transfer", recorded.PaymentMethod)
	assert.False(t, recorded.PaymentVerified)

	confirmed, err := s.ConfirmPayment(a.ID, "transfer")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.PaymentVerified)

	_, err = s.Approve(a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkCompletedOnFutureAppointmentLeavesStoreUntouched(t *testing.T) {
	s := NewStore(testClock(t))
	a, err := s.Insert(newAppointment("2025-08-19", "09:00", StatusConfirmed))
	require.NoError(t, err)

	for name, mark := range map[string]func(uuid.UUID) (Appointment, error){
		"completed": s.MarkCompleted,
		"no-show":   s.MarkNoShow,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := mark(a.ID)
			require.ErrorIs(t, err, ErrInvalidTransition)

			var typed *Error
			require.True(t, errors.As(err, &typed))
			assert.Equal(t, "future", typed.Fields["position"])

			after, err := s.Get(a.ID)
			require.NoError(t, err)
			assert.Equal(t, a, after)
		})
	}
}

func TestPastAppointmentTransitions(t *testing.T) {
	s := NewStore(testClock(t))
	a, err := s.Insert(newAppointment("2025-08-18", "09:00", StatusCompleted))
	require.NoError(t, err)

	got, err := s.MarkNoShow(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, got.Status)

	got, err = s.MarkCompleted(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	_, err = s.SetStatus(a.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = s.SetStatus(a.ID, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
}

func TestSetStatus(t *testing.T) {
	s := NewStore(testClock(t))
	a, err := s.Insert(newAppointment("2025-08-20", "10:00", StatusPending))
	require.NoError(t, err)

	for _, st := range Allowed(Future) {
		got, err := s.SetStatus(a.ID, st)
		require.NoError(t, err, st)
		assert.Equal(t, st, got.Status)
	}

	_, err = s.SetStatus(a.ID, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.SetStatus(a.ID, Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.SetStatus(uuid.New(), StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReject(t *testing.T) {
	s := NewStore(testClock(t))
	a, err := s.Insert(newAppointment("2025-08-20", "10:00", StatusPendingPayment))
	require.NoError(t, err)

	got, err := s.Reject(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.False(t, got.Live())

	_, err = s.Reject(a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReviveRejectedRespectsExclusion(t *testing.T) {
	s := NewStore(testClock(t))
	first, err := s.Insert(newAppointment("2025-08-20", "10:00", StatusPending))
	require.NoError(t, err)
	_, err = s.Reject(first.ID)
	require.NoError(t, err)

	_, err = s.Insert(newAppointment("2025-08-20", "10:00", StatusPending))
	require.NoError(t, err)

	_, err = s.SetStatus(first.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrSlotConflict)

	after, err := s.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, after.Status)
}

func TestListAndLookups(t *testing.T) {
	s := NewStore(testClock(t))
	late, err := s.Insert(newAppointment("2025-08-21", "09:00", StatusPending))
	require.NoError(t, err)
	early, err := s.Insert(newAppointment("2025-08-19", "12:00", StatusPending))
	require.NoError(t, err)

	all := s.List(nil)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, late.ID, all[1].ID)

	only := s.List(func(a Appointment) bool { return a.Date == "2025-08-21" })
	require.Len(t, only, 1)

	held, ok := s.LiveAt("2025-08-19", "12:00", "karina")
	require.True(t, ok)
	assert.Equal(t, early.ID, held.ID)

	_, ok = s.LiveAt("2025-08-19", "12:00", "ada")
	assert.False(t, ok)

	assert.True(t, s.HasAppointmentsFor("JAN@example.com"))
	assert.False(t, s.HasAppointmentsFor("ewa@example.com"))
}
