package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripweave/service-booking/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestToUTCDate(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	// 2026-03-10 02:30 ICT is still 2026-03-09 in UTC.
	local := time.Date(2026, 3, 10, 2, 30, 0, 0, bangkok)
	assert.Equal(t, day(2026, 3, 9), ToUTCDate(local))

	noon := time.Date(2026, 3, 10, 12, 45, 9, 123, time.UTC)
	assert.Equal(t, day(2026, 3, 10), ToUTCDate(noon))
}

func TestDateRangesOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		overlap                        bool
	}{
		{
			"disjoint before",
			day(2026, 3, 1), day(2026, 3, 5),
			day(2026, 3, 6), day(2026, 3, 9),
			false,
		},
		{
			"disjoint after",
			day(2026, 3, 10), day(2026, 3, 12),
			day(2026, 3, 6), day(2026, 3, 9),
			false,
		},
		{
			"contained",
			day(2026, 3, 1), day(2026, 3, 10),
			day(2026, 3, 4), day(2026, 3, 6),
			true,
		},
		{
			"partial overlap",
			day(2026, 3, 1), day(2026, 3, 5),
			day(2026, 3, 4), day(2026, 3, 9),
			true,
		},
		{
			"shared boundary day counts as conflict",
			day(2026, 3, 1), day(2026, 3, 5),
			day(2026, 3, 5), day(2026, 3, 9),
			true,
		},
		{
			"shared start boundary counts as conflict",
			day(2026, 3, 5), day(2026, 3, 9),
			day(2026, 3, 1), day(2026, 3, 5),
			true,
		},
		{
			"same single day",
			day(2026, 3, 5), day(2026, 3, 5),
			day(2026, 3, 5), day(2026, 3, 5),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlap, DateRangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestDateRangesOverlap_IgnoresTimeOfDay(t *testing.T) {
	aEnd := time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)
	bStart := time.Date(2026, 3, 5, 0, 1, 0, 0, time.UTC)
	assert.True(t, DateRangesOverlap(day(2026, 3, 1), aEnd, bStart, day(2026, 3, 9)))
}

func TestBlackoutInWindow(t *testing.T) {
	offDays := []time.Time{day(2026, 4, 13), day(2026, 4, 14)}

	assert.True(t, BlackoutInWindow(day(2026, 4, 10), day(2026, 4, 15), offDays))
	assert.True(t, BlackoutInWindow(day(2026, 4, 13), day(2026, 4, 13), offDays), "window boundary on an off-day")
	assert.False(t, BlackoutInWindow(day(2026, 4, 15), day(2026, 4, 20), offDays))
	assert.False(t, BlackoutInWindow(day(2026, 4, 10), day(2026, 4, 12), nil))
}

func TestIsBlackoutDay(t *testing.T) {
	offDays := []time.Time{day(2026, 4, 13)}
	assert.True(t, IsBlackoutDay(day(2026, 4, 13), offDays))
	assert.True(t, IsBlackoutDay(time.Date(2026, 4, 13, 18, 0, 0, 0, time.UTC), offDays))
	assert.False(t, IsBlackoutDay(day(2026, 4, 14), offDays))
}

func TestValidateGuestCounts(t *testing.T) {
	t.Run("valid party", func(t *testing.T) {
		assert.NoError(t, ValidateGuestCounts(2, 1, 1, 4, 6))
	})

	t.Run("at least one adult", func(t *testing.T) {
		err := ValidateGuestCounts(0, 2, 0, 4, 6)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("negative counts rejected", func(t *testing.T) {
		err := ValidateGuestCounts(1, -1, 0, 4, 6)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("adult cap", func(t *testing.T) {
		err := ValidateGuestCounts(5, 0, 0, 4, 10)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("total cap counts infants", func(t *testing.T) {
		err := ValidateGuestCounts(2, 2, 2, 4, 5)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("zero limits are unbounded", func(t *testing.T) {
		assert.NoError(t, ValidateGuestCounts(12, 8, 3, 0, 0))
	})
}

func TestDeriveDailyTourEnd(t *testing.T) {
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	lastDayTime := time.Date(2000, 1, 1, 17, 30, 0, 0, time.UTC)

	t.Run("multi-day program", func(t *testing.T) {
		end := DeriveDailyTourEnd(start, 3, lastDayTime)
		assert.Equal(t, time.Date(2026, 5, 3, 17, 30, 0, 0, time.UTC), end)
	})

	t.Run("one-day program ends on the start date", func(t *testing.T) {
		end := DeriveDailyTourEnd(start, 1, lastDayTime)
		assert.Equal(t, time.Date(2026, 5, 1, 17, 30, 0, 0, time.UTC), end)
	})

	t.Run("zero program days treated as one", func(t *testing.T) {
		end := DeriveDailyTourEnd(start, 0, lastDayTime)
		assert.Equal(t, time.Date(2026, 5, 1, 17, 30, 0, 0, time.UTC), end)
	})
}
