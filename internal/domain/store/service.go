// Package store is the reference booking backend: it owns persistence and
// enforces the authoritative reservation rules behind the REST contract.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/validator"
	"travelbooking/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Actor is the authenticated caller of a backend operation.
type Actor struct {
	UserID string
	Role   domain.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type Service struct {
	users        UserRepository
	offerings    OfferingRepository
	reservations ReservationRepository
	vehicles     VehicleBookingRepository
	tokens       TokenIssuer
	log          *logrus.Entry
	now          func() time.Time
}

func NewService(
	users UserRepository,
	offerings OfferingRepository,
	reservations ReservationRepository,
	vehicles VehicleBookingRepository,
	tokens TokenIssuer,
	log *logrus.Logger,
) *Service {
	return &Service{
		users:        users,
		offerings:    offerings,
		reservations: reservations,
		vehicles:     vehicles,
		tokens:       tokens,
		log:          log.WithField("component", "store"),
		now:          time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, string(user.Role), "")
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// GetOffering returns the offering as the flat document booking clients read.
func (s *Service) GetOffering(ctx context.Context, rawType, id string) (map[string]any, error) {
	t, ok := domain.ParseServiceType(rawType)
	if !ok {
		return nil, apperr.Validation("type", "Unknown service type")
	}
	o, err := s.offerings.Get(ctx, t, id)
	if err != nil {
		return nil, notFound(err)
	}
	return o.Flatten(), nil
}

// CreateReservation stores a pending reservation. Prices are recomputed from
// the offering; client totals are advisory.
func (s *Service) CreateReservation(ctx context.Context, actor Actor, p *reservation.CreatePayload) (*domain.Reservation, error) {
	if t, ok := domain.ParseServiceType(string(p.ServiceType)); ok {
		p.ServiceType = t
	}
	if err := validator.Check(p); err != nil {
		return nil, err
	}
	profile, ok := reservation.ProfileFor(p.ServiceType)
	if !ok {
		return nil, apperr.Validation("serviceType", "Unknown service type")
	}
	if profile.IdentityRequired && (p.Identity == nil || strings.TrimSpace(p.Identity.CNICNumber) == "") {
		return nil, apperr.Validation("cnicNumber", "CNIC number is required")
	}

	offering, err := s.offerings.Get(ctx, p.ServiceType, p.ServiceID)
	if err != nil {
		return nil, notFound(err)
	}
	raw, err := json.Marshal(offering.Flatten())
	if err != nil {
		return nil, err
	}
	rec, err := profile.ParseRecord(raw)
	if err != nil {
		return nil, err
	}
	if rec.HasCapacity && p.PartySize > rec.Capacity {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrCapacityExceeded, p.PartySize, rec.Capacity)
	}

	var flatFee float64
	if p.NeedsDriver && profile.DriverFeeField != "" {
		flatFee = p.FlatFeePerDay
		if rec.HasDriverFee {
			flatFee = rec.DriverFeePerDay
		}
	}
	period := domain.Period{CheckIn: p.Period.CheckIn, CheckOut: p.Period.CheckOut}
	price := profile.Quote(rec.Price(), period, p.PartySize, flatFee)
	if math.Abs(price.Total-p.TotalAmount) > 0.01 {
		s.log.WithFields(logrus.Fields{
			"service_id":   p.ServiceID,
			"client_total": p.TotalAmount,
			"server_total": price.Total,
		}).Warn("client total differs from offering price")
	}

	r := &domain.Reservation{
		RecordKind:      domain.RecordService,
		ServiceID:       rec.ID,
		ServiceType:     p.ServiceType,
		ServiceName:     rec.Name,
		CustomerID:      actor.UserID,
		ProviderID:      rec.ProviderID,
		Customer:        p.Customer,
		Period:          period,
		PartySize:       p.PartySize,
		Identity:        p.Identity,
		SpecialRequests: p.SpecialRequests,
		NeedsDriver:     p.NeedsDriver,
		PickupLocation:  p.PickupLocation,
		UnitPrice:       price.UnitPrice,
		FlatFeePerDay:   price.FlatFeePerDay,
		DurationDays:    price.DurationDays,
		TotalAmount:     price.Total,
		Status:          domain.ReservationPending,
	}
	if r.ServiceID == "" {
		r.ServiceID = p.ServiceID
	}
	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"confirmation":   r.ConfirmationNumber,
		"service_type":   r.ServiceType,
		"customer_id":    r.CustomerID,
	}).Info("reservation stored")
	return r, nil
}

func (s *Service) ListReservations(ctx context.Context, actor Actor, audience reservation.Audience, rawType string) ([]domain.Reservation, error) {
	f := repository.ListFilter{}
	if rawType != "" {
		t, ok := domain.ParseServiceType(rawType)
		if !ok {
			return nil, apperr.Validation("type", "Unknown service type")
		}
		f.ServiceType = t
	}

	switch audience {
	case reservation.AudienceProvider:
		if !actor.Role.CanModerate() {
			return nil, apperr.ErrForbidden
		}
		if !actor.IsAdmin() {
			f.ProviderID = actor.UserID
		}
	default:
		f.CustomerID = actor.UserID
	}
	return s.reservations.List(ctx, f)
}

func (s *Service) GetReservation(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.IsAdmin() && actor.UserID != r.CustomerID && actor.UserID != r.ProviderID {
		return nil, apperr.ErrForbidden
	}
	return r, nil
}

// UpdateReservationStatus lets the owning provider (or an admin) confirm or
// cancel a pending reservation.
func (s *Service) UpdateReservationStatus(ctx context.Context, actor Actor, id string, update reservation.StatusUpdate) (*domain.Reservation, error) {
	target := domain.NormalizeReservationStatus(string(update.Status))
	if target != domain.ReservationConfirmed && target != domain.ReservationCancelled {
		return nil, apperr.Validation("status", "Status must be confirmed or cancelled")
	}
	reason := strings.TrimSpace(update.RejectionReason)
	if target == domain.ReservationCancelled && reason == "" {
		return nil, apperr.Validation("rejectionReason", "Rejection reason is required")
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.IsAdmin() && !(actor.Role == domain.RoleProvider && actor.UserID == r.ProviderID) {
		return nil, apperr.ErrForbidden
	}
	if r.Status != domain.ReservationPending {
		return nil, ErrInvalidStatusTransition
	}

	if target == domain.ReservationConfirmed {
		reason = ""
	}
	err = s.reservations.UpdateStatus(ctx, id, domain.ReservationPending, target, reason)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, ErrInvalidStatusTransition
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": id,
		"status":         target,
		"actor_id":       actor.UserID,
	}).Info("reservation status changed")
	return s.reservations.GetByID(ctx, id)
}

// DeleteReservation removes a customer's reservation once it is cancelled,
// completed or past its checkout.
func (s *Service) DeleteReservation(ctx context.Context, actor Actor, id string) error {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !actor.IsAdmin() && actor.UserID != r.CustomerID {
		return apperr.ErrForbidden
	}
	if !r.Deletable(s.now()) {
		return ErrNotDeletable
	}
	return notFound(s.reservations.Delete(ctx, id))
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
