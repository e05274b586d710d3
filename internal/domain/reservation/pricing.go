package reservation

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// PriceInput holds the multiplicands of a quote. Zero dates or a zero party size
// mean "not applicable" and count as 1. A nil UnitPrice means the service
// declares no price.
type PriceInput struct {
	UnitPrice     *float64
	Start         time.Time
	End           time.Time
	PartySize     int
	FlatFeePerDay float64
}

type Price struct {
	UnitPrice     float64 `json:"unitPrice"`
	FlatFeePerDay float64 `json:"flatFeePerDay"`
	DurationDays  int     `json:"durationDays"`
	PartySize     int     `json:"partySize"`
	Total         float64 `json:"totalAmount"`
}

// DurationDays counts started days between two instants, never less than 1.
func DurationDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	span := end.Sub(start)
	if span < 0 {
		span = -span
	}
	days := int(math.Ceil(float64(span) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

// Calculate is (unitPrice + flatFeePerDay) × durationDays × partySize.
// A missing unit price yields 0; a zero unit price still charges the flat fee.
func Calculate(in PriceInput) Price {
	p := Price{
		FlatFeePerDay: math.Max(in.FlatFeePerDay, 0),
		DurationDays:  DurationDays(in.Start, in.End),
		PartySize:     in.PartySize,
	}
	if p.PartySize < 1 {
		p.PartySize = 1
	}
	if in.UnitPrice == nil {
		return p
	}
	p.UnitPrice = math.Max(*in.UnitPrice, 0)

	p.Total = (p.UnitPrice + p.FlatFeePerDay) * float64(p.DurationDays) * float64(p.PartySize)
	return p
}
