package reservation

import (
	"context"
	"time"

	"travelbooking/internal/domain"
)

type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceProvider Audience = "provider"
)

// Source is one listing endpoint family consulted by the aggregator.
type Source struct {
	Name        string
	Kind        domain.RecordKind
	ServiceType domain.ServiceType
}

// DeclaredSources lists one unified source per service type followed by the
// legacy vehicle listing. Merged results keep this order.
func DeclaredSources() []Source {
	out := make([]Source, 0, len(domain.ServiceTypes)+1)
	for _, t := range domain.ServiceTypes {
		out = append(out, Source{Name: string(t), Kind: domain.RecordService, ServiceType: t})
	}
	return append(out, Source{Name: "legacy_vehicle", Kind: domain.RecordLegacyVehicle, ServiceType: domain.ServiceVehicle})
}

type StatusUpdate struct {
	Status          domain.ReservationStatus `json:"status"`
	RejectionReason string                   `json:"rejectionReason,omitempty"`
}

// CreatePayload is the body of the single create call issued per submission.
type CreatePayload struct {
	ServiceID       string                       `json:"serviceId" validate:"required"`
	ServiceType     domain.ServiceType           `json:"serviceType" validate:"required"`
	ProviderID      string                       `json:"providerId,omitempty"`
	Customer        domain.Customer              `json:"customer"`
	Period          PayloadPeriod                `json:"period"`
	PartySize       int                          `json:"partySize" validate:"gte=1"`
	Identity        *domain.IdentityVerification `json:"identityVerification,omitempty"`
	SpecialRequests string                       `json:"specialRequests,omitempty"`
	NeedsDriver     bool                         `json:"needsDriver,omitempty"`
	PickupLocation  string                       `json:"pickupLocation,omitempty"`
	UnitPrice       float64                      `json:"unitPrice" validate:"gte=0"`
	FlatFeePerDay   float64                      `json:"flatFeePerDay,omitempty" validate:"gte=0"`
	DurationDays    int                          `json:"durationDays" validate:"gte=1"`
	TotalAmount     float64                      `json:"totalAmount" validate:"gte=0"`
	Status          domain.ReservationStatus     `json:"status" validate:"eq=pending"`
}

type PayloadPeriod struct {
	CheckIn  time.Time `json:"checkInDate" validate:"required"`
	CheckOut time.Time `json:"checkOutDate" validate:"required,gtefield=CheckIn"`
}

// Backend is the REST collaborator that persists reservations.
type Backend interface {
	GetService(ctx context.Context, serviceType domain.ServiceType, id string) ([]byte, error)
	CreateReservation(ctx context.Context, token string, payload *CreatePayload) (*domain.Reservation, error)
	ListReservations(ctx context.Context, token string, audience Audience, src Source) ([]domain.Reservation, error)
	GetReservation(ctx context.Context, token string, ref domain.ReservationRef) (*domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, token string, ref domain.ReservationRef, update StatusUpdate) error
	DeleteReservation(ctx context.Context, token string, ref domain.ReservationRef) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
