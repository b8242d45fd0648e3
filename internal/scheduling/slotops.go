package scheduling

import (
	"context"

	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

func (s *Scheduler) AddSlot(ctx context.Context, date, hhmm string, venue practice.Venue, specialistID string) (slots.TimeSlot, error) {
	var added slots.TimeSlot

	err := s.withSlotLock(ctx, slotKey(date, hhmm, specialistID), func(context.Context) error {
		slot, err := s.mutator.Add(s.table, date, hhmm, venue, specialistID)
		if err != nil {
			return err
		}
		s.metrics.SetAvailableSlots(s.table.Len())
		added = slot
		return nil
	})

	s.metrics.ObserveSlotOperation("add", result(err))
	if err != nil {
		return slots.TimeSlot{}, err
	}
	s.logEvent(ctx, nil, eventlog.EventSlotAdded, slotPayload(date, hhmm, specialistID, venue))
	return added, nil
}

func (s *Scheduler) DeleteSlot(ctx context.Context, date, hhmm, specialistID string, venue practice.Venue) error {
	s.mu.Lock()
	err := s.mutator.Delete(s.table, date, hhmm, specialistID, venue)
	if err == nil {
		s.metrics.SetAvailableSlots(s.table.Len())
	}
	s.mu.Unlock()

	s.metrics.ObserveSlotOperation("delete", result(err))
	if err != nil {
		return err
	}
	s.logEvent(ctx, nil, eventlog.EventSlotDeleted, slotPayload(date, hhmm, specialistID, venue))
	return nil
}

func slotPayload(date, hhmm, specialistID string, venue practice.Venue) map[string]any {
	return map[string]any{
		"date":          date,
		"time":          hhmm,
		"specialist_id": specialistID,
		"venue":         venue.String(),
	}
}
