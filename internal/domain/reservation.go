package domain

import (
	"strings"
	"time"
)

type ServiceType string

const (
	ServiceHotel      ServiceType = "hotel"
	ServiceVehicle    ServiceType = "vehicle"
	ServiceTour       ServiceType = "tour"
	ServiceTrain      ServiceType = "train"
	ServiceFlight     ServiceType = "flight"
	ServiceRestaurant ServiceType = "restaurant"
	ServiceEvent      ServiceType = "event"
)

// ServiceTypes is the declared order used for listings.
var ServiceTypes = []ServiceType{
	ServiceHotel,
	ServiceVehicle,
	ServiceTour,
	ServiceTrain,
	ServiceFlight,
	ServiceRestaurant,
	ServiceEvent,
}

func ParseServiceType(raw string) (ServiceType, bool) {
	t := ServiceType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ServiceTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// NormalizeReservationStatus maps backend spellings onto the canonical statuses.
func NormalizeReservationStatus(raw string) ReservationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pending", "requested":
		return ReservationPending
	case "confirmed", "approved", "accepted":
		return ReservationConfirmed
	case "cancelled", "canceled", "rejected", "declined":
		return ReservationCancelled
	case "completed", "complete", "finished":
		return ReservationCompleted
	default:
		return ReservationStatus(strings.ToLower(strings.TrimSpace(raw)))
	}
}

func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

// RecordKind tells which backend endpoint family owns a reservation.
type RecordKind string

const (
	RecordService       RecordKind = "service"
	RecordLegacyVehicle RecordKind = "legacy_vehicle"
)

func ParseRecordKind(raw string) (RecordKind, bool) {
	switch RecordKind(strings.ToLower(strings.TrimSpace(raw))) {
	case RecordService:
		return RecordService, true
	case RecordLegacyVehicle, "legacy", "vehicle-booking":
		return RecordLegacyVehicle, true
	}
	return "", false
}

type ReservationRef struct {
	Kind RecordKind `json:"recordKind"`
	ID   string     `json:"id"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Period struct {
	CheckIn  time.Time `json:"checkInDate"`
	CheckOut time.Time `json:"checkOutDate"`
}

type IdentityVerification struct {
	CNICNumber string `json:"cnicNumber"`
	CNICPhoto  string `json:"cnicPhotoDataUri"`
}

type Reservation struct {
	ID                 string                `json:"id"`
	RecordKind         RecordKind            `json:"recordKind"`
	ConfirmationNumber string                `json:"confirmationNumber,omitempty"`
	ServiceID          string                `json:"serviceId"`
	ServiceType        ServiceType           `json:"serviceType"`
	ServiceName        string                `json:"serviceName,omitempty"`
	CustomerID         string                `json:"customerId,omitempty"`
	ProviderID         string                `json:"providerId,omitempty"`
	Customer           Customer              `json:"customer"`
	Period             Period                `json:"period"`
	PartySize          int                   `json:"partySize"`
	Identity           *IdentityVerification `json:"identityVerification,omitempty"`
	SpecialRequests    string                `json:"specialRequests,omitempty"`
	NeedsDriver        bool                  `json:"needsDriver,omitempty"`
	PickupLocation     string                `json:"pickupLocation,omitempty"`
	UnitPrice          float64               `json:"unitPrice"`
	FlatFeePerDay      float64               `json:"flatFeePerDay,omitempty"`
	DurationDays       int                   `json:"durationDays"`
	TotalAmount        float64               `json:"totalAmount"`
	Status             ReservationStatus     `json:"status"`
	RejectionReason    string                `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
}

func (r Reservation) Ref() ReservationRef {
	kind := r.RecordKind
	if kind == "" {
		kind = RecordService
	}
	return ReservationRef{Kind: kind, ID: r.ID}
}

// CheckoutElapsed reports whether the stay ended before now.
func (r Reservation) CheckoutElapsed(now time.Time) bool {
	return !r.Period.CheckOut.IsZero() && r.Period.CheckOut.Before(now)
}

// Deletable: terminal status or an elapsed checkout.
func (r Reservation) Deletable(now time.Time) bool {
	return r.Status.IsTerminal() || r.CheckoutElapsed(now)
}
