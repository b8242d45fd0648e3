package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/practice"
)

func TestAddSlotAroundNow(t *testing.T) {
	f := newFixture(t)
	m := NewMutator(f.rules, f.appts, f.clock)
	table := Table{}

	// katarzyna works Mondays and morcinka is open
	_, err := m.Add(table, "2025-08-18", "09:55", practice.Physical("morcinka"), "katarzyna")
	assert.ErrorIs(t, err, appointment.ErrPastSlot)

	_, err = m.Add(table, "2025-08-18", "10:00", practice.Physical("morcinka"), "katarzyna")
	assert.ErrorIs(t, err, appointment.ErrPastSlot)

	slot, err := m.Add(table, "2025-08-18", "10:05", practice.Physical("morcinka"), "katarzyna")
	require.NoError(t, err)
	assert.True(t, slot.Available)

	got, ok := table.Find("2025-08-18", "10:05", "katarzyna", practice.Physical("morcinka"))
	require.True(t, ok)
	assert.Equal(t, slot.ID, got.ID)

	_, err = m.Add(table, "2025-08-17", "18:00", practice.Online(), "katarzyna")
	assert.ErrorIs(t, err, appointment.ErrPastSlot)
}

func TestAddSlotScheduleRules(t *testing.T) {
	f := newFixture(t)
	m := NewMutator(f.rules, f.appts, f.clock)
	table := Table{}

	_, err := m.Add(table, "2025-08-25", "09:00", practice.Online(), "karina")
	assert.ErrorIs(t, err, appointment.ErrScheduleViolation, "karina does not work Mondays")

	_, err = m.Add(table, "2025-08-21", "09:00", practice.Physical("morcinka"), "karina")
	assert.ErrorIs(t, err, appointment.ErrScheduleViolation, "morcinka is closed on Thursdays")

	_, err = m.Add(table, "2025-08-21", "07:30", practice.Online(), "karina")
	assert.NoError(t, err, "manual slots ignore work hours and location days when online")

	noOnline := f.rules.Clone()
	ada := mustSpecialist(t, noOnline, "ada")
	ada.OnlineAvailable = false
	require.NoError(t, noOnline.ReplaceSpecialist(ada))
	_, err = NewMutator(noOnline, f.appts, f.clock).Add(table, "2025-08-22", "20:00", practice.Online(), "ada")
	assert.NoError(t, err, "online flag is not enforced for manual slots")
}

func TestAddSlotLookupsAndInput(t *testing.T) {
	f := newFixture(t)
	m := NewMutator(f.rules, f.appts, f.clock)
	table := Table{}

	_, err := m.Add(table, "2025-08-19", "09:00", practice.Online(), "ghost")
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	_, err = m.Add(table, "2025-08-19", "09:00", practice.Physical("warszawa"), "karina")
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	_, err = m.Add(table, "2025-08-19", "9:00", practice.Online(), "karina")
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)

	_, err = m.Add(table, "2025-08-19", "09:00", practice.Venue{}, "karina")
	assert.ErrorIs(t, err, appointment.ErrInvalidInput)
}

func TestAddSlotConflicts(t *testing.T) {
	f := newFixture(t)
	m := NewMutator(f.rules, f.appts, f.clock)
	table := Table{}

	_, err := m.Add(table, "2025-08-20", "11:00", practice.Physical("morcinka"), "karina")
	require.NoError(t, err)
	_, err = m.Add(table, "2025-08-20", "11:00", practice.Physical("morcinka"), "karina")
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)

	_, err = m.Add(table, "2025-08-20", "11:00", practice.Online(), "karina")
	assert.NoError(t, err, "another venue is a different slot")

	f.book(t, "2025-08-19", "09:00", "karina", practice.Physical("morcinka"), appointment.StatusConfirmed)
	_, err = m.Add(table, "2025-08-19", "09:00", practice.Physical("morcinka"), "karina")
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)
	_, err = m.Add(table, "2025-08-19", "09:00", practice.Online(), "karina")
	assert.ErrorIs(t, err, appointment.ErrSlotConflict)
}

func TestDeleteSlot(t *testing.T) {
	f := newFixture(t)
	m := NewMutator(f.rules, f.appts, f.clock)
	table := Table{}

	_, err := m.Add(table, "2025-08-20", "11:00", practice.Online(), "karina")
	require.NoError(t, err)

	err = m.Delete(table, "2025-08-20", "11:00", "karina", practice.Physical("morcinka"))
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	require.NoError(t, m.Delete(table, "2025-08-20", "11:00", "karina", practice.Online()))
	assert.Empty(t, table)

	err = m.Delete(table, "2025-08-20", "11:00", "karina", practice.Online())
	assert.ErrorIs(t, err, appointment.ErrNotFound)

	err = m.Delete(table, "2025-08-20", "11:00", "ghost", practice.Online())
	assert.ErrorIs(t, err, appointment.ErrNotFound)
}
