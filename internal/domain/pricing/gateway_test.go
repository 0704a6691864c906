package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/service-booking/internal/domain"
	"github.com/tripweave/service-booking/internal/domain/catalog"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testStay(pricing catalog.StayPricing) *catalog.Stay {
	return &catalog.Stay{
		ID:         uuid.New(),
		PageID:     uuid.New(),
		Name:       "Riverside Villa",
		CurrencyID: "THB",
		Pricing:    pricing,
	}
}

func TestComputeStayPrice_BaseNights(t *testing.T) {
	g := NewStandardGateway()
	stay := testStay(catalog.StayPricing{BasePrice: 100000})

	// Mon 2026-03-02 to Thu 2026-03-05: three weekday nights.
	quote, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 2), End: day(2026, 3, 5)},
		stay,
	)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.NumOfNights)
	assert.Len(t, quote.Nights, 3)
	assert.Equal(t, int64(300000), quote.TotalPrice)
	assert.Equal(t, "THB", quote.CurrencyID)
	assert.Zero(t, quote.GuestSurcharge)
	assert.Zero(t, quote.LongTermDiscount)
}

func TestComputeStayPrice_WeekendNights(t *testing.T) {
	g := NewStandardGateway()
	stay := testStay(catalog.StayPricing{BasePrice: 100000, WeekendPrice: 150000})

	// Fri 2026-03-06 to Mon 2026-03-09: Fri night base, Sat and Sun weekend.
	quote, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 6), End: day(2026, 3, 9)},
		stay,
	)
	require.NoError(t, err)

	assert.Equal(t, int64(100000+150000+150000), quote.TotalPrice)
	assert.False(t, quote.Nights[0].IsWeekend)
	assert.True(t, quote.Nights[1].IsWeekend)
	assert.True(t, quote.Nights[2].IsWeekend)
}

func TestComputeStayPrice_SpecialDayOverridesWeekend(t *testing.T) {
	g := NewStandardGateway()
	// Sat 2026-03-07 is both a weekend day and a special day.
	stay := testStay(catalog.StayPricing{
		BasePrice:    100000,
		WeekendPrice: 150000,
		SpecialDays:  []catalog.SpecialDayPrice{{Date: day(2026, 3, 7), Price: 250000}},
	})

	quote, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 1},
		DateRange{Start: day(2026, 3, 7), End: day(2026, 3, 8)},
		stay,
	)
	require.NoError(t, err)

	assert.Equal(t, int64(250000), quote.TotalPrice)
	assert.True(t, quote.Nights[0].IsSpecialDay)
}

func TestComputeStayPrice_GuestSurcharges(t *testing.T) {
	g := NewStandardGateway()
	stay := testStay(catalog.StayPricing{
		BasePrice:      100000,
		BaseAdults:     2,
		AdultSurcharge: 20000,
		ChildSurcharge: 10000,
	})

	// Two nights, one extra adult and one child.
	quote, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 3, NumChildren: 1},
		DateRange{Start: day(2026, 3, 2), End: day(2026, 3, 4)},
		stay,
	)
	require.NoError(t, err)

	// 1 extra adult * 20000 * 2 nights + 1 child * 10000 * 2 nights.
	assert.Equal(t, int64(60000), quote.GuestSurcharge)
	assert.Equal(t, int64(260000), quote.TotalPrice)
}

func TestComputeStayPrice_LongTermDiscount(t *testing.T) {
	g := NewStandardGateway()
	stay := testStay(catalog.StayPricing{
		BasePrice:        100000,
		LongTermNights:   7,
		LongTermDiscount: 10,
	})

	quote, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 2), End: day(2026, 3, 9)},
		stay,
	)
	require.NoError(t, err)

	assert.Equal(t, 7, quote.NumOfNights)
	assert.Equal(t, int64(70000), quote.LongTermDiscount)
	assert.Equal(t, int64(630000), quote.TotalPrice)

	// One night short of the threshold: no discount.
	short, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 2), End: day(2026, 3, 8)},
		stay,
	)
	require.NoError(t, err)
	assert.Zero(t, short.LongTermDiscount)
}

func TestComputeStayPrice_Validation(t *testing.T) {
	g := NewStandardGateway()
	stay := testStay(catalog.StayPricing{BasePrice: 100000})

	_, err := g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 5), End: day(2026, 3, 5)},
		stay,
	)
	assert.True(t, domain.IsKind(err, domain.KindValidation), "zero-night range rejected")

	_, err = g.ComputeStayPrice(
		GuestCounts{NumAdult: 2},
		DateRange{Start: day(2026, 3, 6), End: day(2026, 3, 5)},
		stay,
	)
	assert.True(t, domain.IsKind(err, domain.KindValidation), "inverted range rejected")

	_, err = g.ComputeStayPrice(
		GuestCounts{NumAdult: 0},
		DateRange{Start: day(2026, 3, 5), End: day(2026, 3, 6)},
		stay,
	)
	assert.True(t, domain.IsKind(err, domain.KindValidation), "adult-free party rejected")
}
