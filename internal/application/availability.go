package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/service-booking/internal/domain"
	bookingDomain "github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/catalog"
)

// AvailabilityChecker decides whether a candidate reservation collides with
// existing inventory commitments: active reservations, blackout days, or slot
// capacity. The same checks run again inside the creation transaction; this
// pre-check exists to fail fast before pricing.
type AvailabilityChecker struct {
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewAvailabilityChecker creates an AvailabilityChecker.
func NewAvailabilityChecker(bookings bookingDomain.BookingRepository, logger *zap.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: bookings, logger: logger}
}

// CheckStay validates guest counts against the stay's limits and the date
// window against blackout days and active reservations. Boundary-touching
// date ranges count as conflicts.
func (c *AvailabilityChecker) CheckStay(ctx context.Context, stay *catalog.Stay, start, end time.Time, numAdult, numChildren, numInfant int) error {
	if err := bookingDomain.ValidateGuestCounts(numAdult, numChildren, numInfant, stay.MaxAdults, stay.MaxNumberOfGuest); err != nil {
		return err
	}
	if !start.Before(end) {
		return domain.NewValidationError("start date must be before end date")
	}

	if bookingDomain.BlackoutInWindow(start, end, stay.OffDays) {
		return domain.NewConflictError("the stay is closed on a day in the requested window")
	}

	overlap, err := c.bookings.HasActiveStayOverlap(ctx, stay.ID, start, end)
	if err != nil {
		return err
	}
	if overlap {
		return domain.NewConflictError("the requested dates overlap an existing reservation")
	}
	return nil
}

// CheckDailyTour validates passenger counts and rejects start dates that fall
// on one of the tour's off-days. Daily tours have no capacity beyond the
// per-booking party limits, so no headcount query runs.
func (c *AvailabilityChecker) CheckDailyTour(tour *catalog.Tour, startDate time.Time, numAdult, numChildren int) error {
	if err := bookingDomain.ValidateGuestCounts(numAdult, numChildren, 0, tour.MaxAdults, tour.MaxPassenger); err != nil {
		return err
	}
	if bookingDomain.IsBlackoutDay(startDate, tour.DateOff) {
		return domain.NewConflictError("the start date falls on an off-day of the tour")
	}
	return nil
}

// CheckTourSlot validates passenger counts and rejects departures whose slot
// date has reached capacity. Capacity counts confirmed bookings departing on
// the slot's day; the booking being created is not yet among them.
func (c *AvailabilityChecker) CheckTourSlot(ctx context.Context, tour *catalog.Tour, slot *catalog.TimeSlot, numAdult, numChildren int) error {
	if err := bookingDomain.ValidateGuestCounts(numAdult, numChildren, 0, tour.MaxAdults, tour.MaxPassenger); err != nil {
		return err
	}

	count, err := c.bookings.CountConfirmedTourBookingsOn(ctx, tour.ID, slot.StartAt)
	if err != nil {
		return err
	}
	if tour.MaxPassenger > 0 && count >= int64(tour.MaxPassenger) {
		return domain.NewConflictError("the tour is fully booked for the requested departure")
	}
	return nil
}
