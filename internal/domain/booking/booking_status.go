package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusRequest   BookingStatus = "request"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCanceled  BookingStatus = "canceled"
	StatusCompleted BookingStatus = "completed"
)

// validTransitions defines the state machine for booking status transitions.
// COMPLETED and CANCELED are terminal.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusRequest:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
	StatusCanceled:  {},
	StatusCompleted: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true for statuses that hold inventory: a booking in
// request or confirmed state blocks conflicting reservations.
func (s BookingStatus) IsActive() bool {
	return s == StatusRequest || s == StatusConfirmed
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// BookingType distinguishes the two reservation kinds.
type BookingType string

const (
	TypeTour BookingType = "tour"
	TypeStay BookingType = "stay"
)

// IsValid returns true if the type is a recognized booking type.
func (t BookingType) IsValid() bool {
	return t == TypeTour || t == TypeStay
}

// ParseBookingType converts a string to a BookingType, returning an error if invalid.
func ParseBookingType(s string) (BookingType, error) {
	t := BookingType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid booking type: %s", s)
	}
	return t, nil
}

// PayMethod records how the customer intends to pay. Settlement happens
// outside this service; the method is recorded, not charged.
type PayMethod string

const (
	PayMethodPostpaid PayMethod = "postpaid"
)

// IsValid returns true if the pay method is recognized.
func (p PayMethod) IsValid() bool {
	return p == PayMethodPostpaid
}

// CancelActor records who initiated a cancellation.
type CancelActor string

const (
	CancelBySystem CancelActor = "system"
	CancelByPage   CancelActor = "page"
	CancelByUser   CancelActor = "user"
)

// IsValid returns true if the cancel actor is recognized.
func (a CancelActor) IsValid() bool {
	return a == CancelBySystem || a == CancelByPage || a == CancelByUser
}
