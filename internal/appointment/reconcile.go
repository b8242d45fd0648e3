package appointment

import "github.com/google/uuid"

// Correction records one status rewrite made by Reconcile.
type Correction struct {
	ID   uuid.UUID `json:"id"`
	From Status    `json:"from"`
	To   Status    `json:"to"`
}

// Reconcile moves every appointment back into the partition matching its
// position relative to now: elapsed open appointments become completed and
// future completed or no-show ones return to confirmed. Rejected records are
// valid everywhere and never touched. A second pass at the same instant
// changes nothing.
func (s *Store) Reconcile() []Correction {
	now := s.clock.Now().Instant
	var out []Correction

	for _, id := range s.order {
		a := s.byID[id]
		past, err := s.clock.IsPast(a.Date, a.Time)
		if err != nil {
			continue
		}

		var to Status
		switch {
		case past && (a.Status == StatusPending || a.Status == StatusPendingPayment || a.Status == StatusConfirmed):
			to = StatusCompleted
		case !past && (a.Status == StatusCompleted || a.Status == StatusNoShow):
			to = StatusConfirmed
		default:
			continue
		}

		out = append(out, Correction{ID: id, From: a.Status, To: to})
		s.rewrite(id, to, now)
	}
	return out
}
