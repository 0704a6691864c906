package booking

import (
	"time"

	"github.com/tripweave/service-booking/internal/domain"
)

// Date comparison for availability runs at day granularity in UTC.

// ToUTCDate truncates t to midnight UTC.
func ToUTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return ToUTCDate(a).Equal(ToUTCDate(b))
}

// DateRangesOverlap reports whether [aStart, aEnd] and [bStart, bEnd] collide
// under inclusive boundary semantics: an existing reservation whose start or
// end falls exactly on a requested boundary counts as a conflict.
func DateRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	as, ae := ToUTCDate(aStart), ToUTCDate(aEnd)
	bs, be := ToUTCDate(bStart), ToUTCDate(bEnd)
	return !bs.After(ae) && !be.Before(as)
}

// DateInRange reports whether day falls within [start, end] inclusive, at day
// granularity.
func DateInRange(day, start, end time.Time) bool {
	d := ToUTCDate(day)
	return !d.Before(ToUTCDate(start)) && !d.After(ToUTCDate(end))
}

// IsBlackoutDay reports whether day matches any configured off-day.
func IsBlackoutDay(day time.Time, offDays []time.Time) bool {
	for _, off := range offDays {
		if SameDay(day, off) {
			return true
		}
	}
	return false
}

// BlackoutInWindow reports whether any off-day falls inside [start, end].
// Off-days behave as always-conflicting reservations for stays.
func BlackoutInWindow(start, end time.Time, offDays []time.Time) bool {
	for _, off := range offDays {
		if DateInRange(off, start, end) {
			return true
		}
	}
	return false
}

// ValidateGuestCounts checks a guest breakdown against a service's limits.
// maxAdults bounds adults alone; maxGuests bounds the whole party. A zero
// limit means unbounded.
func ValidateGuestCounts(numAdult, numChildren, numInfant, maxAdults, maxGuests int) error {
	if numAdult < 1 {
		return domain.NewValidationError("at least one adult is required")
	}
	if numChildren < 0 || numInfant < 0 {
		return domain.NewValidationError("guest counts cannot be negative")
	}
	if maxAdults > 0 && numAdult > maxAdults {
		return domain.NewValidationError("number of adults exceeds the allowed maximum")
	}
	if total := numAdult + numChildren + numInfant; maxGuests > 0 && total > maxGuests {
		return domain.NewValidationError("total number of guests exceeds the allowed maximum")
	}
	return nil
}
