package reservation

import (
	"errors"
	"strings"
	"time"

	"travelbooking/internal/domain"

	"github.com/tidwall/gjson"
)

var errInvalidLegacyPayload = errors.New("invalid legacy vehicle payload")

// AdaptLegacyVehicleList normalizes the legacy vehicle listing, either a bare
// array or an object wrapping it under "bookings".
func AdaptLegacyVehicleList(raw []byte) ([]domain.Reservation, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errInvalidLegacyPayload
	}
	doc := gjson.ParseBytes(raw)
	if doc.IsObject() {
		doc = doc.Get("bookings")
	}
	if !doc.IsArray() {
		return nil, errInvalidLegacyPayload
	}

	var out []domain.Reservation
	doc.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			out = append(out, AdaptLegacyVehicle(item))
		}
		return true
	})
	return out, nil
}

// AdaptLegacyVehicleBytes normalizes one legacy vehicle booking document.
func AdaptLegacyVehicleBytes(raw []byte) (*domain.Reservation, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errInvalidLegacyPayload
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, errInvalidLegacyPayload
	}
	r := AdaptLegacyVehicle(doc)
	return &r, nil
}

func AdaptLegacyVehicle(doc gjson.Result) domain.Reservation {
	r := domain.Reservation{
		ID:                 firstString(doc, "_id", "id"),
		RecordKind:         domain.RecordLegacyVehicle,
		ConfirmationNumber: firstString(doc, "bookingNumber"),
		ServiceID:          firstString(doc, "vehicleId", "vehicle._id", "vehicle.id"),
		ServiceType:        domain.ServiceVehicle,
		ServiceName:        firstString(doc, "vehicleName", "vehicle.name"),
		CustomerID:         firstString(doc, "userId", "user._id"),
		ProviderID:         firstString(doc, "ownerId", "vehicle.ownerId"),
		Customer: domain.Customer{
			Name:  firstString(doc, "fullName", "name"),
			Email: firstString(doc, "email"),
			Phone: firstString(doc, "contactNumber", "phone"),
		},
		Period: domain.Period{
			CheckIn:  legacyTime(doc, "pickupDate", "startDate"),
			CheckOut: legacyTime(doc, "returnDate", "endDate"),
		},
		PartySize:       int(doc.Get("passengers").Int()),
		SpecialRequests: firstString(doc, "specialRequests", "notes"),
		NeedsDriver:     legacyBool(doc.Get("needDriver")),
		PickupLocation:  firstString(doc, "pickupLocation"),
		UnitPrice:       doc.Get("pricePerDay").Float(),
		FlatFeePerDay:   doc.Get("driverFee").Float(),
		TotalAmount:     doc.Get("totalPrice").Float(),
		Status:          domain.NormalizeReservationStatus(firstString(doc, "bookingStatus", "status")),
		RejectionReason: firstString(doc, "rejectionReason"),
		CreatedAt:       legacyTime(doc, "createdAt"),
	}
	if r.PartySize < 1 {
		r.PartySize = 1
	}
	r.DurationDays = DurationDays(r.Period.CheckIn, r.Period.CheckOut)

	if cnic := firstString(doc, "cnicNumber"); cnic != "" {
		r.Identity = &domain.IdentityVerification{CNICNumber: cnic, CNICPhoto: firstString(doc, "cnicImage", "cnicPhoto")}
	}
	return r
}

// LegacyStatusBody is the body the legacy status endpoint expects.
func LegacyStatusBody(update StatusUpdate) map[string]any {
	status := "approved"
	if update.Status == domain.ReservationCancelled {
		status = "rejected"
	}
	body := map[string]any{"bookingStatus": status}
	if update.RejectionReason != "" {
		body["rejectionReason"] = update.RejectionReason
	}
	return body
}

func legacyTime(doc gjson.Result, paths ...string) time.Time {
	for _, path := range paths {
		v := doc.Get(path)
		if !v.Exists() {
			continue
		}
		if v.Type == gjson.Number {
			return time.UnixMilli(v.Int()).UTC()
		}
		if t, err := ParseDate(v.String()); err == nil {
			return t
		}
	}
	return time.Time{}
}

// legacyBool accepts true/false as booleans or the "yes"/"no" strings older clients stored.
func legacyBool(v gjson.Result) bool {
	if v.Type == gjson.String {
		switch strings.ToLower(strings.TrimSpace(v.String())) {
		case "yes", "true", "1", "with driver":
			return true
		}
		return false
	}
	return v.Bool()
}
