// Package sweeper runs the periodic booking sweeps in-process.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/application"
	"github.com/tripweave/service-booking/internal/domain/booking"
)

// Worker drives the auto-cancel and auto-complete sweeps on a ticker. Each
// tick runs both sweeps for both booking kinds; the sweeps themselves are
// idempotent, so overlapping or repeated runs are harmless.
type Worker struct {
	sweeps     *application.SweepService
	logger     *zap.Logger
	interval   time.Duration
	staleHours int
}

// NewWorker creates a sweep worker.
func NewWorker(sweeps *application.SweepService, logger *zap.Logger, interval time.Duration, staleHours int) *Worker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if staleHours <= 0 {
		staleHours = application.DefaultStaleHours
	}
	return &Worker{
		sweeps:     sweeps,
		logger:     logger,
		interval:   interval,
		staleHours: staleHours,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Int("stale_hours", w.staleHours),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	for _, kind := range []booking.BookingType{booking.TypeStay, booking.TypeTour} {
		if _, err := w.sweeps.AutoCancelStaleRequests(ctx, kind, w.staleHours); err != nil {
			w.logger.Error("auto-cancel sweep failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
		if _, err := w.sweeps.AutoComplete(ctx, kind); err != nil {
			w.logger.Error("auto-complete sweep failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}
	}
}
