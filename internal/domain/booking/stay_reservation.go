package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/service-booking/internal/domain"
)

// UserInfo is the contact block recorded on a reservation.
type UserInfo struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// NightPrice is one priced night inside a stay metadata snapshot.
type NightPrice struct {
	Date         time.Time `json:"date"`
	Price        int64     `json:"price"`
	IsWeekend    bool      `json:"is_weekend"`
	IsSpecialDay bool      `json:"is_special_day"`
}

// StayMetadata is the frozen Pricing Gateway output captured at booking time.
// It is the source of truth for invoices; totals are never recomputed from
// live pricing configuration.
type StayMetadata struct {
	StayName         string       `json:"stay_name"`
	NumOfNights      int          `json:"num_of_nights"`
	Nights           []NightPrice `json:"nights"`
	GuestSurcharge   int64        `json:"guest_surcharge"`
	LongTermDiscount int64        `json:"long_term_discount"`
	TotalPrice       int64        `json:"total_price"`
	CurrencyID       string       `json:"currency_id"`
}

// StayReservation is the stay-specific detail record for a booking.
type StayReservation struct {
	id              uuid.UUID
	reservationCode string
	stayID          uuid.UUID
	bookingID       uuid.UUID
	startDate       time.Time
	endDate         time.Time
	numAdult        int
	numChildren     int
	numInfant       int
	price           int64
	userInfo        UserInfo
	otherUserInfo   *UserInfo
	metadata        StayMetadata
	createdAt       time.Time
}

// NewStayReservation creates a stay reservation with its frozen metadata.
func NewStayReservation(
	stayID uuid.UUID,
	bookingID uuid.UUID,
	startDate, endDate time.Time,
	numAdult, numChildren, numInfant int,
	userInfo UserInfo,
	otherUserInfo *UserInfo,
	metadata StayMetadata,
) (*StayReservation, error) {
	if stayID == uuid.Nil {
		return nil, domain.NewValidationError("stay ID is required")
	}
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}

	// Stored at day granularity so the overlap query compares like with like.
	checkIn := ToUTCDate(startDate)
	checkOut := ToUTCDate(endDate)
	if !checkIn.Before(checkOut) {
		return nil, domain.NewValidationError("start date must be before end date")
	}
	if numAdult < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}
	if numChildren < 0 || numInfant < 0 {
		return nil, domain.NewValidationError("guest counts cannot be negative")
	}
	if userInfo.Name == "" {
		return nil, domain.NewValidationError("guest name is required")
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	return &StayReservation{
		id:              uuid.New(),
		reservationCode: code,
		stayID:          stayID,
		bookingID:       bookingID,
		startDate:       checkIn,
		endDate:         checkOut,
		numAdult:        numAdult,
		numChildren:     numChildren,
		numInfant:       numInfant,
		price:           metadata.TotalPrice,
		userInfo:        userInfo,
		otherUserInfo:   otherUserInfo,
		metadata:        metadata,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructStayReservation rebuilds a StayReservation from persistence data.
func ReconstructStayReservation(
	id uuid.UUID,
	reservationCode string,
	stayID, bookingID uuid.UUID,
	startDate, endDate time.Time,
	numAdult, numChildren, numInfant int,
	price int64,
	userInfo UserInfo,
	otherUserInfo *UserInfo,
	metadata StayMetadata,
	createdAt time.Time,
) *StayReservation {
	return &StayReservation{
		id:              id,
		reservationCode: reservationCode,
		stayID:          stayID,
		bookingID:       bookingID,
		startDate:       startDate,
		endDate:         endDate,
		numAdult:        numAdult,
		numChildren:     numChildren,
		numInfant:       numInfant,
		price:           price,
		userInfo:        userInfo,
		otherUserInfo:   otherUserInfo,
		metadata:        metadata,
		createdAt:       createdAt,
	}
}

// ID returns the reservation's unique identifier.
func (r *StayReservation) ID() uuid.UUID { return r.id }

// ReservationCode returns the human-readable reservation code.
func (r *StayReservation) ReservationCode() string { return r.reservationCode }

// StayID returns the reserved stay.
func (r *StayReservation) StayID() uuid.UUID { return r.stayID }

// BookingID returns the owning booking.
func (r *StayReservation) BookingID() uuid.UUID { return r.bookingID }

// StartDate returns the check-in date.
func (r *StayReservation) StartDate() time.Time { return r.startDate }

// EndDate returns the check-out date.
func (r *StayReservation) EndDate() time.Time { return r.endDate }

// NumAdult returns the adult guest count.
func (r *StayReservation) NumAdult() int { return r.numAdult }

// NumChildren returns the child guest count.
func (r *StayReservation) NumChildren() int { return r.numChildren }

// NumInfant returns the infant guest count.
func (r *StayReservation) NumInfant() int { return r.numInfant }

// Price returns the reservation price frozen from the metadata snapshot.
func (r *StayReservation) Price() int64 { return r.price }

// UserInfo returns the primary guest contact block.
func (r *StayReservation) UserInfo() UserInfo { return r.userInfo }

// OtherUserInfo returns the optional counterpart guest, or nil.
func (r *StayReservation) OtherUserInfo() *UserInfo { return r.otherUserInfo }

// Metadata returns the frozen pricing snapshot.
func (r *StayReservation) Metadata() StayMetadata { return r.metadata }

// CreatedAt returns the creation timestamp.
func (r *StayReservation) CreatedAt() time.Time { return r.createdAt }
