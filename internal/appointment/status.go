package appointment

import "slices"

// Position places an appointment relative to now.
type Position int

const (
	Future Position = iota
	Past
)

func (p Position) String() string {
	if p == Past {
		return "past"
	}
	return "future"
}

func PositionOf(past bool) Position {
	if past {
		return Past
	}
	return Future
}

// partitions is the single source of truth for which statuses an appointment
// may hold on each side of now. Rejected is valid on both.
var partitions = map[Position][]Status{
	Future: {StatusPending, StatusPendingPayment, StatusConfirmed, StatusRejected},
	Past:   {StatusCompleted, StatusNoShow, StatusRejected},
}

// Allowed lists the statuses permitted at position p.
func Allowed(p Position) []Status {
	return slices.Clone(partitions[p])
}

func (p Position) Permits(s Status) bool {
	return slices.Contains(partitions[p], s)
}
