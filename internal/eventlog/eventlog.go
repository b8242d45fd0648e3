// Package eventlog records an audit trail of scheduling mutations.
package eventlog

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	EventAppointmentCreated       = "APPOINTMENT_CREATED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentPayment       = "APPOINTMENT_PAYMENT_RECORDED"
	EventAppointmentReconciled    = "APPOINTMENT_RECONCILED"
	EventSlotAdded                = "SLOT_ADDED"
	EventSlotDeleted              = "SLOT_DELETED"
	EventPatientCreated           = "PATIENT_CREATED"
	EventPatientUpdated           = "PATIENT_UPDATED"
	EventPatientDeleted           = "PATIENT_DELETED"
	EventSpecialistCreated        = "SPECIALIST_CREATED"
	EventSpecialistUpdated        = "SPECIALIST_UPDATED"
	EventNoteCreated              = "PATIENT_NOTE_CREATED"
	EventNoteUpdated              = "PATIENT_NOTE_UPDATED"
	EventNoteDeleted              = "PATIENT_NOTE_DELETED"
	EventRecommendationCreated    = "RECOMMENDATION_CREATED"
	EventRecommendationShared     = "RECOMMENDATION_SHARED"
	EventRecommendationRead       = "RECOMMENDATION_READ"
	EventRecommendationDeleted    = "RECOMMENDATION_DELETED"
	EventReviewSubmitted          = "REVIEW_SUBMITTED"
	EventReviewApproved           = "REVIEW_APPROVED"
	EventReviewRejected           = "REVIEW_REJECTED"
)

type Event struct {
	Type          string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// DB is the subset of pgxpool.Pool the Postgres sink needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_type     TEXT        NOT NULL,
	appointment_id UUID,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PgSink struct {
	db DB
}

func NewPgSink(db DB) *PgSink {
	return &PgSink{db: db}
}

// EnsureSchema creates the event_logs table when it is missing.
func (s *PgSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create event_logs: %w", err)
	}
	return nil
}

func (s *PgSink) Record(ctx context.Context, ev Event) error {
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := sq.Insert("event_logs").
		Columns("event_type", "appointment_id", "payload", "created_at").
		Values(ev.Type, ev.AppointmentID, ev.Payload, createdAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("build event log insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

// LogSink writes events to the application log when no database is
// configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("event_type", ev.Type),
		zap.ByteString("payload", ev.Payload),
	}
	if ev.AppointmentID != nil {
		fields = append(fields, zap.String("appointment_id", ev.AppointmentID.String()))
	}
	s.logger.Info("scheduling event", fields...)
	return nil
}
