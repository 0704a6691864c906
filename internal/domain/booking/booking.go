package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/service-booking/internal/domain"
)

// SystemCancelReason is recorded when the sweep auto-cancels a stale request.
const SystemCancelReason = "canceled automatically after exceeding the confirmation window"

// Booking is the aggregate root for one reservation transaction. Exactly one
// of TourReservation/StayReservation exists for it, created in the same
// transaction. A booking is never deleted; its lifecycle is carried entirely
// by status.
type Booking struct {
	id          uuid.UUID
	bookingCode string
	bookingType BookingType
	status      BookingStatus
	payMethod   PayMethod

	totalPrice int64
	currencyID string

	createdByID uuid.UUID
	pageID      uuid.UUID
	serviceID   uuid.UUID
	actByID     uuid.UUID

	cancelBy           *CancelActor
	reasonCancellation string
	hasReviewed        bool

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a Booking aggregate. initialStatus must be either
// StatusRequest or StatusConfirmed, per the owning page's booking policy.
func NewBooking(
	bookingType BookingType,
	initialStatus BookingStatus,
	payMethod PayMethod,
	totalPrice int64,
	currencyID string,
	createdByID uuid.UUID,
	pageID uuid.UUID,
	serviceID uuid.UUID,
) (*Booking, error) {
	if !bookingType.IsValid() {
		return nil, domain.NewValidationError("invalid booking type")
	}
	if initialStatus != StatusRequest && initialStatus != StatusConfirmed {
		return nil, domain.NewValidationError("a booking must start in request or confirmed status")
	}
	if !payMethod.IsValid() {
		return nil, domain.NewValidationError("invalid pay method")
	}
	if totalPrice < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}
	if currencyID == "" {
		return nil, domain.NewValidationError("currency is required")
	}
	if createdByID == uuid.Nil {
		return nil, domain.NewValidationError("creator ID is required")
	}
	if pageID == uuid.Nil {
		return nil, domain.NewValidationError("page ID is required")
	}
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:          uuid.New(),
		bookingCode: code,
		bookingType: bookingType,
		status:      initialStatus,
		payMethod:   payMethod,
		totalPrice:  totalPrice,
		currencyID:  currencyID,
		createdByID: createdByID,
		pageID:      pageID,
		serviceID:   serviceID,
		actByID:     createdByID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingCode string,
	bookingType BookingType,
	status BookingStatus,
	payMethod PayMethod,
	totalPrice int64,
	currencyID string,
	createdByID uuid.UUID,
	pageID uuid.UUID,
	serviceID uuid.UUID,
	actByID uuid.UUID,
	cancelBy *CancelActor,
	reasonCancellation string,
	hasReviewed bool,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		bookingCode:        bookingCode,
		bookingType:        bookingType,
		status:             status,
		payMethod:          payMethod,
		totalPrice:         totalPrice,
		currencyID:         currencyID,
		createdByID:        createdByID,
		pageID:             pageID,
		serviceID:          serviceID,
		actByID:            actByID,
		cancelBy:           cancelBy,
		reasonCancellation: reasonCancellation,
		hasReviewed:        hasReviewed,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingCode returns the human-readable booking code.
func (b *Booking) BookingCode() string { return b.bookingCode }

// Type returns the booking kind (tour or stay). Immutable after creation.
func (b *Booking) Type() BookingType { return b.bookingType }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PayMethod returns the recorded payment method.
func (b *Booking) PayMethod() PayMethod { return b.payMethod }

// TotalPrice returns the price frozen at creation, in minor currency units.
func (b *Booking) TotalPrice() int64 { return b.totalPrice }

// CurrencyID returns the currency code frozen at creation.
func (b *Booking) CurrencyID() string { return b.currencyID }

// CreatedByID returns the customer who created the booking.
func (b *Booking) CreatedByID() uuid.UUID { return b.createdByID }

// PageID returns the owning merchant page.
func (b *Booking) PageID() uuid.UUID { return b.pageID }

// ServiceID returns the bookable inventory (stay or tour) ID.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// ActByID returns the last actor to mutate the booking status.
func (b *Booking) ActByID() uuid.UUID { return b.actByID }

// CancelBy returns who initiated cancellation, or nil if not canceled.
func (b *Booking) CancelBy() *CancelActor { return b.cancelBy }

// ReasonCancellation returns the cancellation reason text.
func (b *Booking) ReasonCancellation() string { return b.reasonCancellation }

// HasReviewed reports whether the external review subsystem recorded a review.
func (b *Booking) HasReviewed() bool { return b.hasReviewed }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from request to confirmed. Only the
// operating account of the owning page may confirm.
func (b *Booking) Confirm(actorID, pageOperatorID uuid.UUID) error {
	if actorID != pageOperatorID {
		return domain.NewForbiddenError("only the page operator can confirm a booking")
	}
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.actByID = actorID
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking from request to canceled. The actor must be
// the page operator or the original creator; cancelBy records which. A reason
// is required and is recorded together with cancelBy.
func (b *Booking) Cancel(actorID, pageOperatorID uuid.UUID, reason string) error {
	var by CancelActor
	switch actorID {
	case pageOperatorID:
		by = CancelByPage
	case b.createdByID:
		by = CancelByUser
	default:
		return domain.NewForbiddenError("only the page operator or the booking creator can cancel")
	}
	if reason == "" {
		return domain.NewValidationError("a cancellation reason is required")
	}
	if !b.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCanceled))
	}
	b.status = StatusCanceled
	b.cancelBy = &by
	b.reasonCancellation = reason
	b.actByID = actorID
	b.updatedAt = time.Now().UTC()
	return nil
}

// AutoCancel is the system-invoked cancellation used by the sweep. It
// bypasses actor checks and records the fixed system reason.
func (b *Booking) AutoCancel() error {
	if !b.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCanceled))
	}
	by := CancelBySystem
	b.status = StatusCanceled
	b.cancelBy = &by
	b.reasonCancellation = SystemCancelReason
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete is the system-invoked transition from confirmed to completed,
// triggered by the sweep once the reservation end date has elapsed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkReviewed flips the review flag. The state machine never calls this;
// it is applied when the review subsystem reports a submitted review.
func (b *Booking) MarkReviewed() {
	b.hasReviewed = true
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
