// Package pricing defines the Pricing Gateway contract: a pure function
// turning guest counts, a date range, and a stay's pricing configuration
// into a frozen price breakdown. The breakdown is snapshotted onto the
// reservation at booking time and never recomputed.
package pricing

import (
	"time"

	"github.com/tripweave/service-booking/internal/domain"
	"github.com/tripweave/service-booking/internal/domain/booking"
	"github.com/tripweave/service-booking/internal/domain/catalog"
)

// GuestCounts is the party breakdown priced by the gateway.
type GuestCounts struct {
	NumAdult    int
	NumChildren int
	NumInfant   int
}

// DateRange is a half-open [Start, End) stay window; each night from Start
// up to but excluding End is priced.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Quote is the gateway's frozen output.
type Quote struct {
	NumOfNights      int
	Nights           []booking.NightPrice
	GuestSurcharge   int64
	LongTermDiscount int64
	TotalPrice       int64
	CurrencyID       string
}

// Gateway computes a stay price breakdown.
type Gateway interface {
	ComputeStayPrice(guests GuestCounts, dates DateRange, stay *catalog.Stay) (*Quote, error)
}

// StandardGateway is the default gateway implementation: nightly base or
// weekend price, special-day overrides, per-guest surcharges beyond the base
// party size, and a long-term percentage discount.
type StandardGateway struct{}

// NewStandardGateway creates a StandardGateway.
func NewStandardGateway() *StandardGateway {
	return &StandardGateway{}
}

// ComputeStayPrice prices every night in [Start, End).
func (g *StandardGateway) ComputeStayPrice(guests GuestCounts, dates DateRange, stay *catalog.Stay) (*Quote, error) {
	start := booking.ToUTCDate(dates.Start)
	end := booking.ToUTCDate(dates.End)
	if !start.Before(end) {
		return nil, domain.NewValidationError("start date must be before end date")
	}
	if guests.NumAdult < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}

	cfg := stay.Pricing
	var nights []booking.NightPrice
	var nightTotal int64
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		price := cfg.BasePrice
		weekend := isWeekend(day)
		if weekend && cfg.WeekendPrice > 0 {
			price = cfg.WeekendPrice
		}
		special := false
		for _, sd := range cfg.SpecialDays {
			if booking.SameDay(day, sd.Date) {
				price = sd.Price
				special = true
				break
			}
		}
		nights = append(nights, booking.NightPrice{
			Date:         day,
			Price:        price,
			IsWeekend:    weekend,
			IsSpecialDay: special,
		})
		nightTotal += price
	}

	numNights := len(nights)

	var surcharge int64
	if extraAdults := guests.NumAdult - cfg.BaseAdults; cfg.BaseAdults > 0 && extraAdults > 0 {
		surcharge += int64(extraAdults) * cfg.AdultSurcharge * int64(numNights)
	}
	if guests.NumChildren > 0 {
		surcharge += int64(guests.NumChildren) * cfg.ChildSurcharge * int64(numNights)
	}

	var discount int64
	if cfg.LongTermNights > 0 && numNights >= cfg.LongTermNights && cfg.LongTermDiscount > 0 {
		discount = (nightTotal + surcharge) * int64(cfg.LongTermDiscount) / 100
	}

	return &Quote{
		NumOfNights:      numNights,
		Nights:           nights,
		GuestSurcharge:   surcharge,
		LongTermDiscount: discount,
		TotalPrice:       nightTotal + surcharge - discount,
		CurrencyID:       stay.CurrencyID,
	}, nil
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
