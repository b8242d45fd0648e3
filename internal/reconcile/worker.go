// Package reconcile runs the periodic maintenance pass: the slot window is
// moved to the current day and appointment statuses are realigned with it.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/appointment"
)

type Maintainer interface {
	RollSlots(ctx context.Context) (added, removed int, err error)
	Reconcile(ctx context.Context) ([]appointment.Correction, error)
}

type Worker struct {
	target   Maintainer
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewWorker(target Maintainer, interval time.Duration, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		target:   target,
		interval: interval,
		timeout:  20 * time.Second,
		logger:   logger,
	}
}

// Run reconciles once immediately and then on every tick until ctx ends.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("reconcile worker started", zap.Duration("interval", w.interval))

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutdown signal received, stopping reconcile worker")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass and returns the number of corrections.
func (w *Worker) RunOnce(ctx context.Context) int {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	if added, removed, err := w.target.RollSlots(runCtx); err != nil {
		w.logger.Error("slot roll error", zap.Error(err))
	} else if added+removed > 0 {
		w.logger.Info("slot window moved", zap.Int("added", added), zap.Int("removed", removed))
	}

	corrections, err := w.target.Reconcile(runCtx)
	if err != nil {
		w.logger.Error("reconcile run error", zap.Error(err))
		return 0
	}
	for _, c := range corrections {
		w.logger.Info("appointment status corrected",
			zap.String("appointment_id", c.ID.String()),
			zap.String("from", string(c.From)),
			zap.String("to", string(c.To)))
	}
	w.logger.Debug("reconcile run complete",
		zap.Int("corrections", len(corrections)),
		zap.Duration("took", time.Since(start)))
	return len(corrections)
}
