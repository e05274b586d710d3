package store

import (
	"context"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/repository"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type OfferingRepository interface {
	Get(ctx context.Context, t domain.ServiceType, id string) (*domain.Offering, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus, reason string) error
	Delete(ctx context.Context, id string) error
}

type VehicleBookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.VehicleBooking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.VehicleBooking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.VehicleBooking, error)
	UpdateStatus(ctx context.Context, id, from, to, reason string) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs backend access tokens.
type TokenIssuer interface {
	GenerateToken(userID, role, sessionID string) (string, time.Time, error)
}
