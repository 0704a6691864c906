package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows booking queries for listing and reporting.
type ListFilter struct {
	Type        *BookingType
	Status      *BookingStatus
	PageID      *uuid.UUID
	CreatedByID *uuid.UUID
	ServiceID   *uuid.UUID
}

// BookingWithReservation bundles a booking and whichever reservation it owns.
type BookingWithReservation struct {
	Booking         *Booking
	TourReservation *TourReservation
	StayReservation *StayReservation
}

// BookingRepository defines the persistence contract for booking aggregates.
// A booking and its reservation are written in one transaction; status
// transitions are compare-and-set on the previous status so racing
// transitions cannot both win.
type BookingRepository interface {
	// CreateWithStayReservation persists a booking and its stay reservation
	// atomically, re-verifying date availability inside the transaction.
	CreateWithStayReservation(ctx context.Context, b *Booking, r *StayReservation) error

	// CreateWithTourReservation persists a booking and its tour reservation
	// atomically. A positive maxPassenger re-verifies slot capacity inside
	// the transaction; zero skips the check (daily tours).
	CreateWithTourReservation(ctx context.Context, b *Booking, r *TourReservation, maxPassenger int) error

	// FindByID retrieves a booking with its reservation.
	FindByID(ctx context.Context, id uuid.UUID) (*BookingWithReservation, error)

	// FindByCode retrieves a booking with its reservation by booking code.
	FindByCode(ctx context.Context, code string) (*BookingWithReservation, error)

	// List retrieves bookings matching the filter, newest first.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*BookingWithReservation, int64, error)

	// UpdateStatus persists a status transition with a compare-and-set on the
	// previous status and version. It fails with an invalid-state error when
	// the row already left expectedStatus.
	UpdateStatus(ctx context.Context, b *Booking, expectedStatus BookingStatus) error

	// SetReviewed flips the review flag without touching status.
	SetReviewed(ctx context.Context, id uuid.UUID) error

	// HasActiveStayOverlap reports whether any reservation for the stay with
	// an active booking collides with [start, end] under inclusive bounds.
	HasActiveStayOverlap(ctx context.Context, stayID uuid.UUID, start, end time.Time) (bool, error)

	// CountConfirmedTourBookingsOn counts confirmed bookings whose tour
	// reservation starts on the given UTC day. Used for slot capacity.
	CountConfirmedTourBookingsOn(ctx context.Context, tourID uuid.UUID, day time.Time) (int64, error)

	// FindStaleRequests returns bookings of the kind still in request status
	// created at or before the cutoff. Fetched once as a snapshot; the sweep
	// iterates the ids it got.
	FindStaleRequests(ctx context.Context, kind BookingType, cutoff time.Time) ([]*BookingWithReservation, error)

	// FindCompletable returns confirmed bookings of the kind whose
	// reservation end date is at or before the cutoff.
	FindCompletable(ctx context.Context, kind BookingType, cutoff time.Time) ([]*BookingWithReservation, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
