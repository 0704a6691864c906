package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/notification"
)

// DefaultStaleHours is how long a booking may sit in request status before
// the sweep auto-cancels it.
const DefaultStaleHours = 3

// SweepService runs the time-driven batch transitions: auto-canceling stale
// requests and auto-completing finished stays and tours. Both sweeps select
// on status, so re-running them picks up nothing already transitioned, and a
// failure on one booking never aborts the rest.
type SweepService struct {
	repo       bookingDomain.BookingRepository
	dispatcher *notification.Dispatcher
	producer   EventPublisher
	logger     *zap.Logger
}

// NewSweepService creates a SweepService.
func NewSweepService(
	repo bookingDomain.BookingRepository,
	dispatcher *notification.Dispatcher,
	producer EventPublisher,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		repo:       repo,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// AutoCancelStaleRequests cancels every booking of the kind still in request
// status created at least `hours` hours ago, and returns how many it
// transitioned. Candidates are snapshotted once; bookings created mid-sweep
// cannot already be past the threshold.
func (s *SweepService) AutoCancelStaleRequests(ctx context.Context, kind bookingDomain.BookingType, hours int) (int, error) {
	if hours <= 0 {
		hours = DefaultStaleHours
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	candidates, err := s.repo.FindStaleRequests(ctx, kind, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, bwr := range candidates {
		if err := s.transition(ctx, bwr, bookingDomain.StatusRequest, (*bookingDomain.Booking).AutoCancel); err != nil {
			s.logger.Warn("auto-cancel skipped booking",
				zap.String("booking_id", bwr.Booking.ID().String()),
				zap.Error(err),
			)
			continue
		}
		count++
	}

	s.logger.Info("auto-cancel sweep finished",
		zap.String("kind", string(kind)),
		zap.Int("candidates", len(candidates)),
		zap.Int("canceled", count),
	)
	return count, nil
}

// AutoComplete completes every confirmed booking of the kind whose
// reservation end date is before the start of today (UTC), and returns how
// many it transitioned. Already-completed bookings are excluded by the status
// filter, so running the sweep twice in a day transitions nothing extra.
func (s *SweepService) AutoComplete(ctx context.Context, kind bookingDomain.BookingType) (int, error) {
	now := time.Now().UTC()
	startOfToday := bookingDomain.ToUTCDate(now)

	candidates, err := s.repo.FindCompletable(ctx, kind, startOfToday)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, bwr := range candidates {
		if err := s.transition(ctx, bwr, bookingDomain.StatusConfirmed, (*bookingDomain.Booking).Complete); err != nil {
			s.logger.Warn("auto-complete skipped booking",
				zap.String("booking_id", bwr.Booking.ID().String()),
				zap.Error(err),
			)
			continue
		}
		count++
	}

	s.logger.Info("auto-complete sweep finished",
		zap.String("kind", string(kind)),
		zap.Int("candidates", len(candidates)),
		zap.Int("completed", count),
	)
	return count, nil
}

// transition applies a domain mutation and persists it with a CAS on the
// expected status, then fires the per-booking side effects best-effort.
func (s *SweepService) transition(
	ctx context.Context,
	bwr *bookingDomain.BookingWithReservation,
	expected bookingDomain.BookingStatus,
	mutate func(*bookingDomain.Booking) error,
) error {
	if err := mutate(bwr.Booking); err != nil {
		return err
	}
	bwr.Booking.IncrementVersion()
	if err := s.repo.UpdateStatus(ctx, bwr.Booking, expected); err != nil {
		return err
	}

	publishStatusChanged(ctx, s.producer, s.logger, bwr.Booking)
	s.dispatcher.Notify(ctx, bwr)
	return nil
}
