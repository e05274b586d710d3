package reservation

import (
	"context"
	"time"

	"travelbooking/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationDeleted   EventType = "reservation.deleted"
)

// Event announces a lifecycle change so listing views know to re-fetch.
type Event struct {
	ID          string                   `json:"id"`
	Type        EventType                `json:"type"`
	Reservation domain.ReservationRef    `json:"reservation"`
	ServiceType domain.ServiceType       `json:"serviceType"`
	Status      domain.ReservationStatus `json:"status"`
	CustomerID  string                   `json:"customerId,omitempty"`
	ProviderID  string                   `json:"providerId,omitempty"`
	ActorID     string                   `json:"actorId,omitempty"`
	Reason      string                   `json:"reason,omitempty"`
	OccurredAt  time.Time                `json:"occurredAt"`
}

func NewEvent(t EventType, r domain.Reservation, actorID string) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Reservation: r.Ref(),
		ServiceType: r.ServiceType,
		Status:      r.Status,
		CustomerID:  r.CustomerID,
		ProviderID:  r.ProviderID,
		ActorID:     actorID,
		Reason:      r.RejectionReason,
		OccurredAt:  time.Now().UTC(),
	}
}

func eventForStatus(s domain.ReservationStatus) EventType {
	if s == domain.ReservationConfirmed {
		return EventReservationConfirmed
	}
	return EventReservationCancelled
}

// publish never fails the caller; the lifecycle change already happened.
func publish(ctx context.Context, pub EventPublisher, log *logrus.Entry, ev Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event":          ev.Type,
			"reservation_id": ev.Reservation.ID,
		}).Warn("failed to publish reservation event")
	}
}
