// Package catalog holds the read models of the bookable inventory the
// booking core consults: stays, tours, their calendars and limits, and the
// owning merchant pages. Catalog CRUD lives in other services; this service
// only reads.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// BookingPolicy controls the initial status of a new booking on a page.
type BookingPolicy string

const (
	// PolicyConfirm seeds new bookings in request status awaiting merchant
	// confirmation.
	PolicyConfirm BookingPolicy = "confirm"
	// PolicyQuick seeds new bookings directly in confirmed status.
	PolicyQuick BookingPolicy = "quick"
)

// Page is the merchant page owning bookable services.
type Page struct {
	ID            uuid.UUID
	Name          string
	RelatedUserID uuid.UUID
	BookingPolicy BookingPolicy
	ContactEmail  string
}

// SpecialDayPrice overrides the nightly price on a specific date.
type SpecialDayPrice struct {
	Date  time.Time `json:"date"`
	Price int64     `json:"price"`
}

// StayPricing is a stay's pricing configuration consumed by the pricing
// gateway. Prices are in minor currency units.
type StayPricing struct {
	BasePrice          int64             `json:"base_price"`
	WeekendPrice       int64             `json:"weekend_price"`
	AdultSurcharge     int64             `json:"adult_surcharge"`
	ChildSurcharge     int64             `json:"child_surcharge"`
	BaseAdults         int               `json:"base_adults"`
	LongTermNights     int               `json:"long_term_nights"`
	LongTermDiscount   int               `json:"long_term_discount_percent"`
	SpecialDays        []SpecialDayPrice `json:"special_days,omitempty"`
}

// Stay is multi-day lodging inventory.
type Stay struct {
	ID               uuid.UUID
	PageID           uuid.UUID
	Name             string
	CurrencyID       string
	MaxAdults        int
	MaxNumberOfGuest int
	OffDays          []time.Time
	Pricing          StayPricing
}

// ProgramDay is one scheduled day of a tour program.
type ProgramDay struct {
	Day       int       `json:"day"`
	StartTime time.Time `json:"start_time"`
}

// TimeSlot is a pre-defined departure window for a non-daily tour.
type TimeSlot struct {
	ID      uuid.UUID
	TourID  uuid.UUID
	StartAt time.Time
	EndAt   time.Time
}

// Tour is scheduled or daily tour inventory.
type Tour struct {
	ID              uuid.UUID
	PageID          uuid.UUID
	Name            string
	CurrencyID      string
	IsDailyTour     bool
	ProgramDays     int
	Program         []ProgramDay
	DateOff         []time.Time
	MaxPassenger    int
	MaxAdults       int
	AdultPrice      int64
	ChildPrice      int64
	HolidayCalendar []time.Time
}

// LastProgramDayTime returns the time-of-day of the final program entry, used
// to derive a daily tour's end timestamp. Falls back to the start date's own
// time when the program is empty.
func (t *Tour) LastProgramDayTime(fallback time.Time) time.Time {
	if len(t.Program) == 0 {
		return fallback
	}
	return t.Program[len(t.Program)-1].StartTime
}

// Contact is a user's notification address, resolved from the user directory.
type Contact struct {
	UserID uuid.UUID
	Name   string
	Email  string
}
