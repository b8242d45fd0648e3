// Package scheduling is the application root: it owns the rules, the
// appointment store, the patient registry and the slot table, and serializes
// every change to them.
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/appointment"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/metrics"
	"github.com/hackgods/practice-scheduling/internal/patients"
	"github.com/hackgods/practice-scheduling/internal/practice"
	redisclient "github.com/hackgods/practice-scheduling/internal/redis"
	"github.com/hackgods/practice-scheduling/internal/reviews"
	"github.com/hackgods/practice-scheduling/internal/slots"
)

// Identity is who is calling, as reported by the presentation layer.
type Identity struct {
	Role         appointment.Role
	SpecialistID string
	Email        string
}

func (id Identity) Staff() bool {
	return id.Role == appointment.RoleAdmin || id.Role == appointment.RoleSpecialist
}

type Options struct {
	Clock       *clock.Clock
	Rules       *practice.RuleSet
	HorizonDays int
	// Locker is optional; when set, slot-keyed operations also take a
	// distributed lock before the local mutex.
	Locker redisclient.Locker
	// Claims is optional; when set, every live appointment also holds a
	// claim on its key so replicas refuse each other's bookings.
	Claims  redisclient.Claims
	Events  eventlog.Sink
	Metrics *metrics.SchedulingMetrics
	Logger  *zap.Logger
}

type Scheduler struct {
	mu sync.Mutex

	clock     *clock.Clock
	rules     *practice.RuleSet
	appts     *appointment.Store
	patients  *patients.Registry
	journal   *patients.Journal
	reviews   *reviews.Board
	table     slots.Table
	generator *slots.Generator
	mutator   *slots.Mutator
	// builtOn is the day the slot table window was last moved to.
	builtOn string

	locker  redisclient.Locker
	claims  redisclient.Claims
	events  eventlog.Sink
	metrics *metrics.SchedulingMetrics
	logger  *zap.Logger
}

// New builds a scheduler with an empty slot table; call Regenerate to fill it.
func New(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := opts.Events
	if events == nil {
		events = eventlog.NewLogSink(logger)
	}
	rules := opts.Rules
	if rules == nil {
		rules = practice.Default()
	}

	appts := appointment.NewStore(opts.Clock)
	now := func() time.Time { return opts.Clock.Now().Instant }
	return &Scheduler{
		clock:     opts.Clock,
		rules:     rules,
		appts:     appts,
		patients:  patients.NewRegistry(now),
		journal:   patients.NewJournal(now),
		reviews:   reviews.NewBoard(now),
		table:     slots.Table{},
		generator: slots.NewGenerator(rules, appts, opts.Clock, opts.HorizonDays),
		mutator:   slots.NewMutator(rules, appts, opts.Clock),
		locker:    opts.Locker,
		claims:    opts.Claims,
		events:    events,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

func (s *Scheduler) Clock() *clock.Clock {
	return s.clock
}

// Rules returns a copy of the current availability rules.
func (s *Scheduler) Rules() *practice.RuleSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Clone()
}

// Slots returns the part of the slot table visible for sel.
func (s *Scheduler) Slots(sel slots.Selection) slots.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollLocked()
	return slots.Filter(s.table, s.rules, sel)
}

// AllSlots returns a copy of the whole table.
func (s *Scheduler) AllSlots() slots.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollLocked()
	return s.table.Clone()
}

// Regenerate rebuilds the slot table from the rules. Manually added slots
// are discarded.
func (s *Scheduler) Regenerate(ctx context.Context) error {
	s.mu.Lock()
	table, err := s.generator.Generate()
	if err == nil {
		s.table = table
		s.builtOn = s.clock.Now().Date
		s.metrics.SetAvailableSlots(table.Len())
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("regenerate slots: %w", err)
	}
	s.logger.Info("slot table regenerated", zap.Int("slots", table.Len()), zap.Int("dates", len(table)))
	return nil
}

// Reconcile realigns appointment statuses with the current time.
func (s *Scheduler) Reconcile(ctx context.Context) ([]appointment.Correction, error) {
	s.mu.Lock()
	corrections := s.appts.Reconcile()
	s.mu.Unlock()

	for _, c := range corrections {
		id := c.ID
		s.metrics.ObserveReconcile(string(c.From), string(c.To))
		s.logEvent(ctx, &id, eventlog.EventAppointmentReconciled, map[string]any{
			"from": c.From,
			"to":   c.To,
		})
	}
	return corrections, nil
}

// Restore loads previously saved patients and appointments. Slots taken by
// live appointments are released and, with shared claims, claimed.
func (s *Scheduler) Restore(ctx context.Context, ps []patients.Patient, as []appointment.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range ps {
		if _, err := s.patients.Restore(p); err != nil {
			return fmt.Errorf("restore patient %s: %w", p.ID, err)
		}
	}
	for _, a := range as {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.Live() {
			if err := s.claim(ctx, "restore", a); err != nil {
				return fmt.Errorf("restore appointment %s: %w", a.ID, err)
			}
		}
		stored, err := s.appts.Insert(a)
		if err != nil {
			if a.Live() {
				s.unclaim(ctx, a)
			}
			return fmt.Errorf("restore appointment %s: %w", a.ID, err)
		}
		if stored.Live() {
			s.table.Release(stored.Date, stored.Time, stored.SpecialistID)
		}
	}
	s.metrics.SetAvailableSlots(s.table.Len())
	return nil
}

func (s *Scheduler) Appointment(id uuid.UUID) (appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appts.Get(id)
}

// Appointments lists what who may see: everything for admins, their own
// calendar for specialists and their bookings for patients.
func (s *Scheduler) Appointments(who Identity) []appointment.Appointment {
	var match func(appointment.Appointment) bool
	switch who.Role {
	case appointment.RoleAdmin:
		match = nil
	case appointment.RoleSpecialist:
		match = func(a appointment.Appointment) bool { return a.SpecialistID == who.SpecialistID }
	case appointment.RolePatient:
		if who.Email == "" {
			return nil
		}
		match = func(a appointment.Appointment) bool { return strings.EqualFold(a.Patient.Email, who.Email) }
	default:
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appts.List(match)
}

func slotKey(date, hhmm, specialistID string) string {
	return date + ":" + hhmm + ":" + specialistID
}

// withSlotLock takes the distributed lock for the key when configured and
// then the scheduler mutex.
func (s *Scheduler) withSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	locked := func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rollLocked()
		return fn(ctx)
	}
	if s.locker == nil {
		return locked(ctx)
	}

	err := s.locker.WithSlotLock(ctx, key, locked)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return appointment.NewError(appointment.KindSlotConflict, "lock slot", "slot", key, "lock", "busy")
	}
	return err
}

func (s *Scheduler) logEvent(ctx context.Context, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	ev := eventlog.Event{
		Type:          eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     s.clock.Now().Instant,
	}
	if err := s.events.Record(ctx, ev); err != nil {
		s.logger.Error("failed to record event", zap.String("event_type", eventType), zap.Error(err))
	}
}

// result labels an error for metrics.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := appointment.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
