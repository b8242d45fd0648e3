package scheduling

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	redisclient "github.com/hackgods/practice-scheduling/internal/redis"
)

// claim records a as the holder of its key in the shared claim store. A key
// held by another appointment, possibly booked through another replica, is a
// slot conflict.
func (s *Scheduler) claim(ctx context.Context, op string, a appointment.Appointment) error {
	if s.claims == nil {
		return nil
	}
	key := slotKey(a.Date, a.Time, a.SpecialistID)
	err := s.claims.Claim(ctx, key, a.ID.String())
	if !errors.Is(err, redisclient.ErrClaimHeld) {
		return err
	}

	kv := []string{"date", a.Date, "time", a.Time, "specialist_id", a.SpecialistID, "claim", "held"}
	if owner, ok, oerr := s.claims.Owner(ctx, key); oerr == nil && ok {
		kv = append(kv, "appointment_id", owner)
	}
	return appointment.NewError(appointment.KindSlotConflict, op, kv...)
}

func (s *Scheduler) unclaim(ctx context.Context, a appointment.Appointment) {
	if s.claims == nil {
		return
	}
	if err := s.claims.Release(ctx, slotKey(a.Date, a.Time, a.SpecialistID), a.ID.String()); err != nil {
		s.logger.Warn("failed to release slot claim",
			zap.String("appointment_id", a.ID.String()),
			zap.Error(err))
	}
}
