package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warsaw(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultZone)
	require.NoError(t, err)
	return loc
}

func fixed(t *testing.T, at time.Time) *Clock {
	t.Helper()
	return New(warsaw(t), func() time.Time { return at })
}

func TestNowUsesPracticeZone(t *testing.T) {
	// 22:30 UTC in summer is already the next day in Warsaw (UTC+2)
	c := fixed(t, time.Date(2025, 8, 18, 22, 30, 0, 0, time.UTC))

	now := c.Now()
	assert.Equal(t, "2025-08-19", now.Date)
	assert.Equal(t, "00:30", now.Time)
}

func TestToInstantHonoursDST(t *testing.T) {
	c := fixed(t, time.Now())

	tests := []struct {
		name       string
		date, time string
		wantUTC    time.Time
	}{
		{"winter offset", "2025-01-15", "09:00", time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)},
		{"summer offset", "2025-08-19", "09:00", time.Date(2025, 8, 19, 7, 0, 0, 0, time.UTC)},
		{"day after spring forward", "2025-03-31", "12:00", time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ToInstant(tt.date, tt.time)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.wantUTC), "got %s", got.UTC())
		})
	}
}

func TestToInstantRejectsMalformedInput(t *testing.T) {
	c := fixed(t, time.Now())

	_, err := c.ToInstant("2025-13-01", "09:00")
	assert.Error(t, err)

	_, err = c.ToInstant("2025-08-19", "9am")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	c := fixed(t, time.Now())

	assert.Equal(t, "2025-01-01", c.FormatDate(time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12-31", c.FormatDate(time.Date(2024, 12, 31, 22, 30, 0, 0, time.UTC)))
}

func TestIsPast(t *testing.T) {
	loc := warsaw(t)
	c := fixed(t, time.Date(2025, 8, 18, 10, 0, 30, 0, loc))

	past, err := c.IsPast("2025-08-18", "09:55")
	require.NoError(t, err)
	assert.True(t, past)

	past, err = c.IsPast("2025-08-18", "10:00")
	require.NoError(t, err)
	assert.True(t, past, "the current minute has started")

	past, err = c.IsPast("2025-08-18", "10:05")
	require.NoError(t, err)
	assert.False(t, past)

	past, err = c.IsPast("2025-08-17", "23:59")
	require.NoError(t, err)
	assert.True(t, past)
}

func TestWeekdayAndAddDays(t *testing.T) {
	c := fixed(t, time.Now())

	wd, err := c.Weekday("2025-08-18")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	next, err := c.AddDays("2025-03-29", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-30", next)

	next, err = c.AddDays("2025-10-25", 2)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-27", next)

	next, err = c.AddDays("2025-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", next)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidTime("09:00"))
	assert.False(t, ValidTime("9:00"))
	assert.False(t, ValidTime("24:00"))
	assert.True(t, ValidDate("2025-08-19"))
	assert.False(t, ValidDate("2025-8-19"))
	assert.False(t, ValidDate("2025-02-30"))
}

func TestLoadDefaultsToWarsaw(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultZone, c.Location().String())

	_, err = Load("Mars/Olympus_Mons")
	assert.Error(t, err)
}
