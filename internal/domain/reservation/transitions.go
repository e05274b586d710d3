package reservation

import (
	"context"
	"fmt"
	"strings"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var validTransitions = map[domain.ReservationStatus]map[Action]domain.ReservationStatus{
	domain.ReservationPending: {
		ActionApprove: domain.ReservationConfirmed,
		ActionReject:  domain.ReservationCancelled,
	},
}

// Next returns the status an action leads to. Only pending reservations move.
func Next(current domain.ReservationStatus, action Action) (domain.ReservationStatus, error) {
	if next, ok := validTransitions[current][action]; ok {
		return next, nil
	}
	return current, fmt.Errorf("%w: cannot %s a %s reservation", ErrInvalidStatusTransition, action, current)
}

// StateMachine drives provider decisions through the backend.
type StateMachine struct {
	backend Backend
	events  EventPublisher
	boards  *Boards
	log     *logrus.Entry
}

func NewStateMachine(backend Backend, events EventPublisher, boards *Boards, log *logrus.Logger) *StateMachine {
	return &StateMachine{
		backend: backend,
		events:  events,
		boards:  boards,
		log:     log.WithField("component", "reservation_state_machine"),
	}
}

func (m *StateMachine) Approve(ctx context.Context, sess *session.Session, ref domain.ReservationRef) (*domain.Reservation, error) {
	return m.apply(ctx, sess, ref, ActionApprove, "")
}

// Reject refuses a blank reason before any backend call.
func (m *StateMachine) Reject(ctx context.Context, sess *session.Session, ref domain.ReservationRef, reason string) (*domain.Reservation, error) {
	return m.apply(ctx, sess, ref, ActionReject, reason)
}

func (m *StateMachine) apply(ctx context.Context, sess *session.Session, ref domain.ReservationRef, action Action, reason string) (*domain.Reservation, error) {
	if sess == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !sess.User.Role.CanModerate() {
		return nil, apperr.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if action == ActionReject && reason == "" {
		return nil, apperr.Validation("reason", "Rejection reason is required")
	}

	current, err := m.backend.GetReservation(ctx, sess.BackendToken, ref)
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	if sess.User.Role == domain.RoleProvider && current.ProviderID != "" && current.ProviderID != sess.User.ID {
		return nil, apperr.ErrForbidden
	}

	next, err := Next(current.Status, action)
	if err != nil {
		return nil, err
	}

	update := StatusUpdate{Status: next}
	if action == ActionReject {
		update.RejectionReason = reason
	}
	if err := m.backend.UpdateReservationStatus(ctx, sess.BackendToken, ref, update); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"reservation_id": ref.ID,
			"kind":           ref.Kind,
			"action":         action,
		}).Warn("status update rejected")
		return nil, fmt.Errorf("%s reservation: %w", action, err)
	}

	updated, err := m.backend.GetReservation(ctx, sess.BackendToken, ref)
	if err != nil {
		// the update went through; reconcile locally
		m.log.WithError(err).WithField("reservation_id", ref.ID).Warn("re-fetch after transition failed")
		optimistic := *current
		optimistic.Status = next
		optimistic.RejectionReason = update.RejectionReason
		updated = &optimistic
	}

	m.boards.For(sess.ID).Upsert(*updated)

	m.log.WithFields(logrus.Fields{
		"reservation_id": ref.ID,
		"kind":           ref.Kind,
		"from":           current.Status,
		"to":             updated.Status,
		"actor_id":       sess.User.ID,
	}).Info("reservation status changed")

	publish(ctx, m.events, m.log, NewEvent(eventForStatus(next), *updated, sess.User.ID))
	return updated, nil
}
