package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Scheduler *scheduling.Scheduler
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    *zap.Logger
	// Metrics is mounted at /metrics when set.
	Metrics      http.Handler
	Env          string
	Version      string
	RateLimitRPS int
	CORSOrigins  []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sched := cfg.Scheduler

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID", "X-User-Role", "X-User-Email", "X-Specialist-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))
		}
		r.Use(IdentityMiddleware)

		// Catalog
		r.Get("/specialists", listSpecialistsHandler(sched))
		r.Get("/locations", listLocationsHandler(sched))
		r.Get("/service-types", listServiceTypesHandler(sched))
		r.Get("/slots", listSlotsHandler(sched))

		// Appointment endpoints
		r.Post("/appointments", createAppointmentHandler(sched))
		r.Get("/appointments", listAppointmentsHandler(sched))
		r.Get("/appointments/{id}", getAppointmentHandler(sched))
		r.Post("/appointments/{id}/payment", recordPaymentHandler(sched))

		// Patient journal and reviews
		r.Get("/recommendations", myRecommendationsHandler(sched))
		r.Post("/recommendations/{id}/read", markRecommendationReadHandler(sched))
		r.Get("/reviews", listReviewsHandler(sched, false))
		r.Post("/reviews", submitReviewHandler(sched))

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff)

			r.Post("/appointments", adminBookHandler(sched))
			r.Post("/appointments/{id}/approve", transitionHandler(sched.Approve))
			r.Post("/appointments/{id}/confirm-payment", confirmPaymentHandler(sched))
			r.Post("/appointments/{id}/reject", transitionHandler(sched.Reject))
			r.Post("/appointments/{id}/status", setStatusHandler(sched))
			r.Post("/appointments/{id}/complete", transitionHandler(sched.MarkCompleted))
			r.Post("/appointments/{id}/no-show", transitionHandler(sched.MarkNoShow))

			r.Post("/slots", addSlotHandler(sched))
			r.Delete("/slots", deleteSlotHandler(sched))
			r.Post("/slots/regenerate", regenerateHandler(sched))
			r.Post("/reconcile", reconcileHandler(sched))

			r.Get("/patients", listPatientsHandler(sched))
			r.Post("/patients", createPatientHandler(sched))
			r.Get("/patients/{id}", getPatientHandler(sched))
			r.Put("/patients/{id}", updatePatientHandler(sched))
			r.Delete("/patients/{id}", deletePatientHandler(sched))

			r.Get("/patients/{id}/notes", listNotesHandler(sched))
			r.Post("/patients/{id}/notes", createNoteHandler(sched))
			r.Put("/notes/{id}", updateNoteHandler(sched))
			r.Delete("/notes/{id}", deleteNoteHandler(sched))

			r.Get("/patients/{id}/recommendations", listRecommendationsHandler(sched))
			r.Post("/patients/{id}/recommendations", createRecommendationHandler(sched))
			r.Post("/recommendations/{id}/share", shareRecommendationHandler(sched))
			r.Delete("/recommendations/{id}", deleteRecommendationHandler(sched))

			r.Get("/reviews", listReviewsHandler(sched, true))
			r.Post("/reviews/{id}/approve", approveReviewHandler(sched))
			r.Delete("/reviews/{id}", rejectReviewHandler(sched))

			r.Post("/specialists", createSpecialistHandler(sched))
			r.Put("/specialists/{id}", updateSpecialistHandler(sched))
		})
	})

	return r
}
