package appointment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitions(t *testing.T) {
	assert.ElementsMatch(t,
		[]Status{StatusPending, StatusPendingPayment, StatusConfirmed, StatusRejected},
		Allowed(Future))
	assert.ElementsMatch(t,
		[]Status{StatusCompleted, StatusNoShow, StatusRejected},
		Allowed(Past))

	assert.True(t, Past.Permits(StatusRejected))
	assert.True(t, Future.Permits(StatusRejected))
	assert.False(t, Future.Permits(StatusCompleted))
	assert.False(t, Past.Permits(StatusPending))

	// callers cannot edit the table through the returned slice
	list := Allowed(Future)
	list[0] = StatusCompleted
	assert.False(t, Future.Permits(StatusCompleted))
}

func TestErrorKinds(t *testing.T) {
	err := NewError(KindSlotConflict, "book", "date", "2025-08-19", "time", "09:00")
	wrapped := fmt.Errorf("handler: %w", err)

	assert.ErrorIs(t, wrapped, ErrSlotConflict)
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindSlotConflict, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, "book: slot_conflict (date=2025-08-19 time=09:00)", err.Error())
}
