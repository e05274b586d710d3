package reservation

import (
	"errors"
	"time"

	"travelbooking/internal/domain"

	"github.com/tidwall/gjson"
)

type RateVariant int

const (
	// RatePerDayPerParty charges every guest for every day.
	RatePerDayPerParty RateVariant = iota
	// RatePerDay charges per day regardless of party size (vehicles).
	RatePerDay
	// RatePerParty charges once per guest or ticket.
	RatePerParty
)

// Profile captures what differs between service types.
type Profile struct {
	Type             domain.ServiceType
	IdentityRequired bool
	SingleDay        bool
	Rate             RateVariant
	PriceField       string
	CapacityField    string
	DriverFeeField   string
}

var profiles = map[domain.ServiceType]Profile{
	domain.ServiceHotel: {
		Type: domain.ServiceHotel, IdentityRequired: true, Rate: RatePerDayPerParty,
		PriceField: "pricePerNight", CapacityField: "maxGuests",
	},
	domain.ServiceVehicle: {
		Type: domain.ServiceVehicle, IdentityRequired: true, Rate: RatePerDay,
		PriceField: "pricePerDay", CapacityField: "seats", DriverFeeField: "driverFeePerDay",
	},
	domain.ServiceTour: {
		Type: domain.ServiceTour, IdentityRequired: true, SingleDay: true, Rate: RatePerParty,
		PriceField: "pricePerPerson", CapacityField: "maxTravelers",
	},
	domain.ServiceTrain: {
		Type: domain.ServiceTrain, SingleDay: true, Rate: RatePerParty,
		PriceField: "price", CapacityField: "availableSeats",
	},
	domain.ServiceFlight: {
		Type: domain.ServiceFlight, SingleDay: true, Rate: RatePerParty,
		PriceField: "price", CapacityField: "availableSeats",
	},
	domain.ServiceRestaurant: {
		Type: domain.ServiceRestaurant, IdentityRequired: true, SingleDay: true, Rate: RatePerParty,
		PriceField: "pricePerGuest", CapacityField: "capacity",
	},
	domain.ServiceEvent: {
		Type: domain.ServiceEvent, IdentityRequired: true, SingleDay: true, Rate: RatePerParty,
		PriceField: "price", CapacityField: "availableTickets",
	},
}

func ProfileFor(t domain.ServiceType) (Profile, bool) {
	p, ok := profiles[t]
	return p, ok
}

// ServiceRecord is the subset of an offering the booking flow needs.
type ServiceRecord struct {
	ID              string
	Name            string
	ProviderID      string
	UnitPrice       float64
	HasUnitPrice    bool
	Capacity        int
	HasCapacity     bool
	DriverFeePerDay float64
	HasDriverFee    bool
}

// Price is the record's unit price, nil when the document declares none.
func (r ServiceRecord) Price() *float64 {
	if !r.HasUnitPrice {
		return nil
	}
	price := r.UnitPrice
	return &price
}

var errInvalidServiceRecord = errors.New("invalid service record")

// ParseRecord reads the profile's fields out of a raw offering document.
func (p Profile) ParseRecord(raw []byte) (ServiceRecord, error) {
	if !gjson.ValidBytes(raw) {
		return ServiceRecord{}, errInvalidServiceRecord
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return ServiceRecord{}, errInvalidServiceRecord
	}

	rec := ServiceRecord{
		ID:         firstString(doc, "id", "_id"),
		Name:       firstString(doc, "name", "title"),
		ProviderID: firstString(doc, "providerId", "ownerId"),
	}

	price := doc.Get(p.PriceField)
	if !price.Exists() {
		price = doc.Get("price")
	}
	if price.Exists() && price.Type != gjson.Null {
		rec.UnitPrice = price.Float()
		rec.HasUnitPrice = true
	}

	if c := doc.Get(p.CapacityField); c.Exists() && c.Type != gjson.Null {
		rec.Capacity = int(c.Int())
		rec.HasCapacity = true
	}
	if p.DriverFeeField != "" {
		if f := doc.Get(p.DriverFeeField); f.Exists() {
			rec.DriverFeePerDay = f.Float()
			rec.HasDriverFee = true
		}
	}
	return rec, nil
}

// Quote prices a booking according to the profile's rate variant.
func (p Profile) Quote(unitPrice *float64, period domain.Period, partySize int, flatFeePerDay float64) Price {
	in := PriceInput{UnitPrice: unitPrice, FlatFeePerDay: flatFeePerDay}
	switch p.Rate {
	case RatePerDayPerParty:
		in.Start, in.End, in.PartySize = period.CheckIn, period.CheckOut, partySize
	case RatePerDay:
		in.Start, in.End = period.CheckIn, period.CheckOut
	case RatePerParty:
		in.PartySize = partySize
	}
	return Calculate(in)
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// today is the start of the current UTC day.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
