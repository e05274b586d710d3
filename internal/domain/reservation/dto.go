package reservation

import "travelbooking/internal/domain"

type QuoteRequest struct {
	ServiceType   string   `json:"serviceType"`
	UnitPrice     *float64 `json:"unitPrice"`
	FlatFeePerDay float64  `json:"flatFeePerDay"`
	CheckIn       string   `json:"checkInDate"`
	CheckOut      string   `json:"checkOutDate"`
	PartySize     int      `json:"partySize"`
}

// CreateReservationRequest carries no binding rules: the builder owns validation order.
type CreateReservationRequest struct {
	ServiceType     string `json:"serviceType"`
	ServiceID       string `json:"serviceId"`
	CheckIn         string `json:"checkInDate"`
	CheckOut        string `json:"checkOutDate"`
	PartySize       int    `json:"partySize"`
	Phone           string `json:"phone"`
	CNICNumber      string `json:"cnicNumber"`
	CNICPhoto       string `json:"cnicPhotoDataUri"`
	SpecialRequests string `json:"specialRequests"`
	NeedsDriver     bool   `json:"needsDriver"`
	PickupLocation  string `json:"pickupLocation"`
}

func (r CreateReservationRequest) toForm() Form {
	// unknown types pass through and fail in the builder
	t, ok := domain.ParseServiceType(r.ServiceType)
	if !ok {
		t = domain.ServiceType(r.ServiceType)
	}
	return Form{
		ServiceType:     t,
		ServiceID:       r.ServiceID,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		PartySize:       r.PartySize,
		Phone:           r.Phone,
		CNICNumber:      r.CNICNumber,
		CNICPhoto:       r.CNICPhoto,
		SpecialRequests: r.SpecialRequests,
		NeedsDriver:     r.NeedsDriver,
		PickupLocation:  r.PickupLocation,
	}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type DeleteRequest struct {
	Confirm bool `json:"confirm"`
}
