// Package events defines the Kafka topics and payloads the booking service
// produces and consumes.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents      = "booking.events"
	TopicNotificationEvents = "notification.events"
	TopicMailOutbound       = "mail.outbound"
	TopicReviewEvents       = "review.events"
)

// Event types on booking.events.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingCanceled  = "booking.canceled"
	BookingCompleted = "booking.completed"
)

// Event types on review.events (produced by the review service).
const (
	ReviewSubmitted = "review.submitted"
)

// BookingStatusChangedEvent is published on every booking status change.
type BookingStatusChangedEvent struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	BookingCode string     `json:"booking_code"`
	BookingType string     `json:"booking_type"`
	Status      string     `json:"status"`
	CancelBy    string     `json:"cancel_by,omitempty"`
	PageID      uuid.UUID  `json:"page_id"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	ServiceID   uuid.UUID  `json:"service_id"`
	TotalPrice  int64      `json:"total_price"`
	CurrencyID  string     `json:"currency_id"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// ReviewSubmittedEvent is consumed to flip a booking's review flag.
type ReviewSubmittedEvent struct {
	ReviewID   uuid.UUID `json:"review_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}
