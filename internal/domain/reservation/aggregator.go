package reservation

import (
	"context"
	"fmt"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultFanOut = 4

// Listing is a merged, filtered view plus an optional partial-failure notice.
type Listing struct {
	Items         []domain.Reservation `json:"items"`
	Total         int                  `json:"total"`
	Notice        string               `json:"notice,omitempty"`
	FailedSources []string             `json:"failedSources,omitempty"`
}

// Aggregator merges every listing endpoint into one view per audience.
type Aggregator struct {
	backend     Backend
	sources     []Source
	concurrency int
	boards      *Boards
	events      EventPublisher
	now         func() time.Time
	log         *logrus.Entry
}

func NewAggregator(backend Backend, boards *Boards, events EventPublisher, concurrency int, log *logrus.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultFanOut
	}
	return &Aggregator{
		backend:     backend,
		sources:     DeclaredSources(),
		concurrency: concurrency,
		boards:      boards,
		events:      events,
		now:         time.Now,
		log:         log.WithField("component", "booking_aggregator"),
	}
}

// Fetch queries every source in parallel. One failing source never cancels the
// others; results keep the declared source order and are de-duplicated by
// (recordKind, id). The returned *PartialFetchFailure is nil when all sources answered.
func (a *Aggregator) Fetch(ctx context.Context, sess *session.Session, audience Audience) ([]domain.Reservation, *PartialFetchFailure, error) {
	if sess == nil {
		return nil, nil, apperr.ErrAuthRequired
	}

	results := make([][]domain.Reservation, len(a.sources))
	errs := make([]error, len(a.sources))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, src := range a.sources {
		g.Go(func() error {
			items, err := a.backend.ListReservations(ctx, sess.BackendToken, audience, src)
			results[i], errs[i] = items, err
			return nil
		})
	}
	_ = g.Wait()

	var failures []SourceFailure
	seen := make(map[domain.ReservationRef]struct{})
	merged := make([]domain.Reservation, 0)
	for i, src := range a.sources {
		if errs[i] != nil {
			failures = append(failures, SourceFailure{Source: src.Name, Err: errs[i]})
			continue
		}
		for _, r := range results[i] {
			if r.RecordKind == "" {
				r.RecordKind = src.Kind
			}
			if _, dup := seen[r.Ref()]; dup {
				continue
			}
			seen[r.Ref()] = struct{}{}
			merged = append(merged, r)
		}
	}

	if len(failures) == 0 {
		return merged, nil, nil
	}
	partial := &PartialFetchFailure{Failures: failures, Total: len(a.sources)}
	a.log.WithFields(logrus.Fields{
		"audience": audience,
		"failed":   partial.Sources(),
		"user_id":  sess.User.ID,
	}).Warn(partial.Error())

	if len(failures) == len(a.sources) {
		return nil, partial, fmt.Errorf("%w: %w", ErrListingUnavailable, partial)
	}
	return merged, partial, nil
}

// List fetches, stores the merged result on the session board and applies q.
func (a *Aggregator) List(ctx context.Context, sess *session.Session, audience Audience, q Query) (*Listing, error) {
	merged, partial, err := a.Fetch(ctx, sess, audience)
	if err != nil {
		return nil, err
	}
	a.boards.For(sess.ID).Replace(merged)

	items := Filter(merged, q, a.now())
	listing := &Listing{Items: items, Total: len(items)}
	if partial != nil {
		listing.Notice = partial.Notice()
		listing.FailedSources = partial.Sources()
	}
	return listing, nil
}

// Lookup prefers the session board and falls back to the backend.
func (a *Aggregator) Lookup(ctx context.Context, sess *session.Session, ref domain.ReservationRef) (*domain.Reservation, error) {
	if sess == nil {
		return nil, apperr.ErrAuthRequired
	}
	if r, ok := a.boards.For(sess.ID).Find(ref); ok {
		return &r, nil
	}
	r, err := a.backend.GetReservation(ctx, sess.BackendToken, ref)
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return r, nil
}

// Delete removes a cancelled, completed or already-ended reservation after
// explicit confirmation. On success the record leaves the board without a re-fetch.
func (a *Aggregator) Delete(ctx context.Context, sess *session.Session, r domain.Reservation, confirmed bool) error {
	if sess == nil {
		return apperr.ErrAuthRequired
	}
	if sess.User.Role != domain.RoleAdmin && r.CustomerID != "" && r.CustomerID != sess.User.ID {
		return apperr.ErrForbidden
	}
	if !r.Deletable(a.now()) {
		return ErrNotDeletable
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := a.backend.DeleteReservation(ctx, sess.BackendToken, r.Ref()); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	a.boards.For(sess.ID).Remove(r.Ref())

	a.log.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"kind":           r.Ref().Kind,
		"user_id":        sess.User.ID,
	}).Info("reservation deleted")
	publish(ctx, a.events, a.log, NewEvent(EventReservationDeleted, r, sess.User.ID))
	return nil
}
