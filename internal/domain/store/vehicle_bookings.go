package store

import (
	"context"
	"errors"
	"strings"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/repository"

	"github.com/sirupsen/logrus"
)

func (s *Service) ListVehicleBookings(ctx context.Context, actor Actor, audience reservation.Audience) ([]domain.VehicleBooking, error) {
	if audience == reservation.AudienceProvider {
		if !actor.Role.CanModerate() {
			return nil, apperr.ErrForbidden
		}
		return s.vehicles.ListByOwner(ctx, actor.UserID)
	}
	return s.vehicles.ListByUser(ctx, actor.UserID)
}

func (s *Service) GetVehicleBooking(ctx context.Context, actor Actor, id string) (*domain.VehicleBooking, error) {
	b, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.IsAdmin() && actor.UserID != b.UserID && actor.UserID != b.OwnerID {
		return nil, apperr.ErrForbidden
	}
	return b, nil
}

// UpdateVehicleBookingStatus approves or rejects a pending legacy booking.
func (s *Service) UpdateVehicleBookingStatus(ctx context.Context, actor Actor, id, bookingStatus, reason string) (*domain.VehicleBooking, error) {
	to := strings.ToLower(strings.TrimSpace(bookingStatus))
	if to != domain.LegacyStatusApproved && to != domain.LegacyStatusRejected {
		return nil, apperr.Validation("bookingStatus", "bookingStatus must be approved or rejected")
	}
	reason = strings.TrimSpace(reason)
	if to == domain.LegacyStatusRejected && reason == "" {
		return nil, apperr.Validation("rejectionReason", "Rejection reason is required")
	}
	if to == domain.LegacyStatusApproved {
		reason = ""
	}

	b, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !actor.IsAdmin() && !(actor.Role == domain.RoleProvider && actor.UserID == b.OwnerID) {
		return nil, apperr.ErrForbidden
	}
	if domain.NormalizeReservationStatus(b.BookingStatus) != domain.ReservationPending {
		return nil, ErrInvalidStatusTransition
	}

	err = s.vehicles.UpdateStatus(ctx, id, b.BookingStatus, to, reason)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, ErrInvalidStatusTransition
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"vehicle_booking_id": id,
		"booking_status":     to,
		"actor_id":           actor.UserID,
	}).Info("vehicle booking status changed")
	return s.vehicles.GetByID(ctx, id)
}

func (s *Service) DeleteVehicleBooking(ctx context.Context, actor Actor, id string) error {
	b, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !actor.IsAdmin() && actor.UserID != b.UserID {
		return apperr.ErrForbidden
	}
	terminal := domain.NormalizeReservationStatus(b.BookingStatus).IsTerminal()
	if !terminal && !b.ReturnDate.Before(s.now()) {
		return ErrNotDeletable
	}
	return notFound(s.vehicles.Delete(ctx, id))
}
