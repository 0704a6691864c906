package catalog

import (
	"context"

	"github.com/google/uuid"
)

// StayRepository reads stay inventory.
type StayRepository interface {
	// FindByID retrieves a stay by its service ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Stay, error)
}

// TourRepository reads tour inventory and its departure slots.
type TourRepository interface {
	// FindByID retrieves a tour by its service ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Tour, error)

	// FindTimeSlot retrieves one departure slot of a tour. Whether the slot
	// is still bookable is the caller's check.
	FindTimeSlot(ctx context.Context, tourID, slotID uuid.UUID) (*TimeSlot, error)
}

// PageRepository reads merchant pages for authorization and notification data.
type PageRepository interface {
	// FindByID retrieves a page by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Page, error)
}

// UserDirectory resolves user contact details for notifications.
type UserDirectory interface {
	// FindContact retrieves a user's name and email. A user without an email
	// yields a Contact with an empty Email, not an error.
	FindContact(ctx context.Context, userID uuid.UUID) (*Contact, error)
}
