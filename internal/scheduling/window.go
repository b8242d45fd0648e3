package scheduling

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RollSlots moves the slot table window to the current day. Elapsed slots are
// dropped and the days that entered the horizon since the last move are
// generated; slots of dates still ahead, manual ones included, are kept.
func (s *Scheduler) RollSlots(ctx context.Context) (added, removed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roll()
}

// rollLocked is roll for callers that only need the table current. Callers
// hold s.mu.
func (s *Scheduler) rollLocked() {
	if _, _, err := s.roll(); err != nil {
		s.logger.Warn("failed to move slot window", zap.Error(err))
	}
}

func (s *Scheduler) roll() (added, removed int, err error) {
	if s.builtOn == "" {
		return 0, 0, nil
	}
	now := s.clock.Now()
	removed = s.table.DropBefore(now.Date) + s.table.DropElapsed(now.Date, now.Time)

	if now.Date > s.builtOn {
		lastBuilt, err := s.clock.AddDays(s.builtOn, s.generator.Horizon())
		if err != nil {
			return 0, removed, fmt.Errorf("roll slots: %w", err)
		}
		fresh, err := s.generator.GenerateAfter(lastBuilt)
		if err != nil {
			return 0, removed, fmt.Errorf("roll slots: %w", err)
		}
		s.table.Merge(fresh)
		added = fresh.Len()
		s.builtOn = now.Date
	}

	if added+removed > 0 {
		s.metrics.SetAvailableSlots(s.table.Len())
	}
	return added, removed, nil
}
