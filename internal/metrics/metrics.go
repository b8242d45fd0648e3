package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters for bookings, status changes and slot
// edits. A nil *SchedulingMetrics is valid and records nothing.
type SchedulingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	slotOpsTotal     *prometheus.CounterVec
	reconcileTotal   *prometheus.CounterVec
	availableSlots   prometheus.Gauge
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "practice",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by origin and result kind",
		}, []string{"origin", "result"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "practice",
			Subsystem: "scheduling",
			Name:      "status_transitions_total",
			Help:      "Appointment status transitions by operation and result kind",
		}, []string{"operation", "result"}),
		slotOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "practice",
			Subsystem: "scheduling",
			Name:      "slot_operations_total",
			Help:      "Manual slot edits by operation and result kind",
		}, []string{"operation", "result"}),
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "practice",
			Subsystem: "scheduling",
			Name:      "reconcile_corrections_total",
			Help:      "Statuses rewritten by the reconciler",
		}, []string{"from", "to"}),
		availableSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "practice",
			Subsystem: "scheduling",
			Name:      "available_slots",
			Help:      "Slots currently in the table",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.slotOpsTotal, m.reconcileTotal, m.availableSlots)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(origin, result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(origin, result).Inc()
}

func (m *SchedulingMetrics) ObserveTransition(operation, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(operation, result).Inc()
}

func (m *SchedulingMetrics) ObserveSlotOperation(operation, result string) {
	if m == nil {
		return
	}
	m.slotOpsTotal.WithLabelValues(operation, result).Inc()
}

func (m *SchedulingMetrics) ObserveReconcile(from, to string) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(from, to).Inc()
}

func (m *SchedulingMetrics) SetAvailableSlots(n int) {
	if m == nil {
		return
	}
	m.availableSlots.Set(float64(n))
}
