package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/service-booking/internal/domain"
)

// TourMetadata is the pricing and calendar snapshot frozen from the tour at
// booking time. Tour pricing is flat, not computed, so no gateway call is
// involved.
type TourMetadata struct {
	TourName        string      `json:"tour_name"`
	AdultPrice      int64       `json:"adult_price"`
	ChildPrice      int64       `json:"child_price"`
	CurrencyID      string      `json:"currency_id"`
	HolidayCalendar []time.Time `json:"holiday_calendar,omitempty"`
	TimeSlotID      *uuid.UUID  `json:"time_slot_id,omitempty"`
}

// TourReservation is the tour-specific detail record for a booking.
type TourReservation struct {
	id              uuid.UUID
	reservationCode string
	tourID          uuid.UUID
	bookingID       uuid.UUID
	startDate       time.Time
	endDate         time.Time
	numAdult        int
	numChildren     int
	pickUpPoint     string
	dropOffPoint    string
	userInfo        UserInfo
	otherUserInfo   *UserInfo
	metadata        TourMetadata
	createdAt       time.Time
}

// NewTourReservation creates a tour reservation with its frozen metadata.
func NewTourReservation(
	tourID uuid.UUID,
	bookingID uuid.UUID,
	startDate, endDate time.Time,
	numAdult, numChildren int,
	pickUpPoint, dropOffPoint string,
	userInfo UserInfo,
	otherUserInfo *UserInfo,
	metadata TourMetadata,
) (*TourReservation, error) {
	if tourID == uuid.Nil {
		return nil, domain.NewValidationError("tour ID is required")
	}
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if endDate.Before(startDate) {
		return nil, domain.NewValidationError("end date cannot be before start date")
	}
	if numAdult < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}
	if numChildren < 0 {
		return nil, domain.NewValidationError("guest counts cannot be negative")
	}
	if userInfo.Name == "" {
		return nil, domain.NewValidationError("guest name is required")
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	return &TourReservation{
		id:              uuid.New(),
		reservationCode: code,
		tourID:          tourID,
		bookingID:       bookingID,
		startDate:       startDate.UTC(),
		endDate:         endDate.UTC(),
		numAdult:        numAdult,
		numChildren:     numChildren,
		pickUpPoint:     pickUpPoint,
		dropOffPoint:    dropOffPoint,
		userInfo:        userInfo,
		otherUserInfo:   otherUserInfo,
		metadata:        metadata,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructTourReservation rebuilds a TourReservation from persistence data.
func ReconstructTourReservation(
	id uuid.UUID,
	reservationCode string,
	tourID, bookingID uuid.UUID,
	startDate, endDate time.Time,
	numAdult, numChildren int,
	pickUpPoint, dropOffPoint string,
	userInfo UserInfo,
	otherUserInfo *UserInfo,
	metadata TourMetadata,
	createdAt time.Time,
) *TourReservation {
	return &TourReservation{
		id:              id,
		reservationCode: reservationCode,
		tourID:          tourID,
		bookingID:       bookingID,
		startDate:       startDate,
		endDate:         endDate,
		numAdult:        numAdult,
		numChildren:     numChildren,
		pickUpPoint:     pickUpPoint,
		dropOffPoint:    dropOffPoint,
		userInfo:        userInfo,
		otherUserInfo:   otherUserInfo,
		metadata:        metadata,
		createdAt:       createdAt,
	}
}

// DeriveDailyTourEnd computes the end of a daily tour: the start date advanced
// by programDays-1 days, carrying the time-of-day of the last scheduled
// program day. A one-day program ends on the start date itself.
func DeriveDailyTourEnd(startDate time.Time, programDays int, lastDayTime time.Time) time.Time {
	if programDays < 1 {
		programDays = 1
	}
	day := startDate.UTC().AddDate(0, 0, programDays-1)
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		lastDayTime.Hour(), lastDayTime.Minute(), 0, 0,
		time.UTC,
	)
}

// ID returns the reservation's unique identifier.
func (r *TourReservation) ID() uuid.UUID { return r.id }

// ReservationCode returns the human-readable reservation code.
func (r *TourReservation) ReservationCode() string { return r.reservationCode }

// TourID returns the reserved tour.
func (r *TourReservation) TourID() uuid.UUID { return r.tourID }

// BookingID returns the owning booking.
func (r *TourReservation) BookingID() uuid.UUID { return r.bookingID }

// StartDate returns the departure date.
func (r *TourReservation) StartDate() time.Time { return r.startDate }

// EndDate returns the return date.
func (r *TourReservation) EndDate() time.Time { return r.endDate }

// NumAdult returns the adult passenger count.
func (r *TourReservation) NumAdult() int { return r.numAdult }

// NumChildren returns the child passenger count.
func (r *TourReservation) NumChildren() int { return r.numChildren }

// PickUpPoint returns where passengers are collected.
func (r *TourReservation) PickUpPoint() string { return r.pickUpPoint }

// DropOffPoint returns where passengers are returned.
func (r *TourReservation) DropOffPoint() string { return r.dropOffPoint }

// UserInfo returns the primary passenger contact block.
func (r *TourReservation) UserInfo() UserInfo { return r.userInfo }

// OtherUserInfo returns the optional counterpart passenger, or nil.
func (r *TourReservation) OtherUserInfo() *UserInfo { return r.otherUserInfo }

// Metadata returns the frozen tour snapshot.
func (r *TourReservation) Metadata() TourMetadata { return r.metadata }

// CreatedAt returns the creation timestamp.
func (r *TourReservation) CreatedAt() time.Time { return r.createdAt }
