package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"travelbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeSources = []Source{
	{Name: "hotel", Kind: domain.RecordService, ServiceType: domain.ServiceHotel},
	{Name: "event", Kind: domain.RecordService, ServiceType: domain.ServiceEvent},
	{Name: "legacy_vehicle", Kind: domain.RecordLegacyVehicle, ServiceType: domain.ServiceVehicle},
}

func setupAggregator(backend Backend, sources []Source) (*Aggregator, *Boards, *recordingPublisher) {
	boards := NewBoards()
	events := &recordingPublisher{}
	a := NewAggregator(backend, boards, events, 2, quietLogger())
	a.sources = sources
	a.now = func() time.Time { return date("2026-04-01") }
	return a, boards, events
}

func rsv(id string, t domain.ServiceType, status domain.ReservationStatus, in, out string) domain.Reservation {
	return domain.Reservation{
		ID:          id,
		ServiceType: t,
		CustomerID:  "c-1",
		Status:      status,
		Period:      domain.Period{CheckIn: date(in), CheckOut: date(out)},
	}
}

func TestAggregator_PartialFailureKeepsOthers(t *testing.T) {
	backend := newFakeBackend()
	backend.listings["hotel"] = []domain.Reservation{rsv("h1", domain.ServiceHotel, domain.ReservationPending, "2026-05-01", "2026-05-03")}
	backend.listErrs["event"] = errors.New("connection reset")
	backend.listings["legacy_vehicle"] = []domain.Reservation{
		rsv("v1", domain.ServiceVehicle, domain.ReservationConfirmed, "2026-06-01", "2026-06-02"),
		rsv("v2", domain.ServiceVehicle, domain.ReservationCancelled, "2026-02-01", "2026-02-02"),
	}
	a, boards, _ := setupAggregator(backend, threeSources)

	listing, err := a.List(context.Background(), customerSession(), AudienceCustomer, Query{})
	require.NoError(t, err)

	ids := make([]string, 0, len(listing.Items))
	for _, r := range listing.Items {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"h1", "v1", "v2"}, ids, "declared source order")
	assert.Equal(t, []string{"event"}, listing.FailedSources)
	assert.NotEmpty(t, listing.Notice)
	assert.Equal(t, domain.RecordLegacyVehicle, listing.Items[1].RecordKind, "kind inherited from source")
	assert.Len(t, boards.For("sess-customer").Snapshot(), 3)
}

func TestAggregator_AllSourcesFail(t *testing.T) {
	backend := newFakeBackend()
	for _, s := range threeSources {
		backend.listErrs[s.Name] = errors.New("down")
	}
	a, _, _ := setupAggregator(backend, threeSources)

	_, partial, err := a.Fetch(context.Background(), customerSession(), AudienceProvider)
	assert.ErrorIs(t, err, ErrListingUnavailable)
	require.NotNil(t, partial)
	assert.Len(t, partial.Failures, 3)
}

func TestAggregator_DeduplicatesByKindAndID(t *testing.T) {
	dup := rsv("x1", domain.ServiceHotel, domain.ReservationPending, "2026-05-01", "2026-05-02")
	dup.RecordKind = domain.RecordService
	legacySameID := rsv("x1", domain.ServiceVehicle, domain.ReservationPending, "2026-05-01", "2026-05-02")

	backend := newFakeBackend()
	backend.listings["hotel"] = []domain.Reservation{dup}
	backend.listings["event"] = []domain.Reservation{dup}
	backend.listings["legacy_vehicle"] = []domain.Reservation{legacySameID}
	a, _, _ := setupAggregator(backend, threeSources)

	merged, partial, err := a.Fetch(context.Background(), customerSession(), AudienceCustomer)
	require.NoError(t, err)
	assert.Nil(t, partial)
	assert.Len(t, merged, 2, "same id in another endpoint family is a different record")
}

func TestAggregator_Filters(t *testing.T) {
	now := date("2026-04-01")
	items := []domain.Reservation{
		rsv("up-hotel", domain.ServiceHotel, domain.ReservationPending, "2026-04-05", "2026-04-07"),
		rsv("up-cancelled", domain.ServiceHotel, domain.ReservationCancelled, "2026-04-05", "2026-04-07"),
		rsv("past-event", domain.ServiceEvent, domain.ReservationConfirmed, "2026-03-01", "2026-03-01"),
		rsv("completed-tour", domain.ServiceTour, domain.ReservationCompleted, "2026-04-01", "2026-04-02"),
	}

	ids := func(rs []domain.Reservation) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"up-hotel", "up-cancelled", "past-event", "completed-tour"}, ids(Filter(items, Query{Tab: TabAll}, now)))
	assert.Equal(t, []string{"up-hotel", "completed-tour"}, ids(Filter(items, Query{Tab: TabUpcoming}, now)))
	assert.Equal(t, []string{"past-event", "completed-tour"}, ids(Filter(items, Query{Tab: TabPast}, now)))
	assert.Equal(t, []string{"up-cancelled"}, ids(Filter(items, Query{Tab: TabCancelled}, now)))
	assert.Equal(t, []string{"up-hotel"}, ids(Filter(items, Query{Type: domain.ServiceHotel, Tab: TabUpcoming}, now)))
	assert.Equal(t, []string{"past-event", "completed-tour", "up-hotel", "up-cancelled"}, ids(Filter(items, Query{Sort: SortCheckIn}, now)))
}

func TestAggregator_DeleteRefusedForPendingFuture(t *testing.T) {
	r := rsv("r1", domain.ServiceHotel, domain.ReservationPending, "2026-05-01", "2026-05-03")
	backend := newFakeBackend(r)
	a, _, events := setupAggregator(backend, threeSources)

	err := a.Delete(context.Background(), customerSession(), r, true)
	assert.ErrorIs(t, err, ErrNotDeletable)
	assert.Zero(t, backend.deleteCalls)
	assert.Empty(t, events.types())
}

func TestAggregator_DeleteNeedsConfirmation(t *testing.T) {
	r := rsv("r1", domain.ServiceHotel, domain.ReservationCancelled, "2026-05-01", "2026-05-03")
	backend := newFakeBackend(r)
	a, _, _ := setupAggregator(backend, threeSources)

	err := a.Delete(context.Background(), customerSession(), r, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Zero(t, backend.deleteCalls)
}

func TestAggregator_DeleteRemovesFromBoard(t *testing.T) {
	past := rsv("r1", domain.ServiceHotel, domain.ReservationConfirmed, "2026-03-01", "2026-03-03")
	keep := rsv("r2", domain.ServiceHotel, domain.ReservationPending, "2026-05-01", "2026-05-03")
	backend := newFakeBackend(past, keep)
	a, boards, events := setupAggregator(backend, threeSources)
	boards.For("sess-customer").Replace([]domain.Reservation{past, keep})

	found, err := a.Lookup(context.Background(), customerSession(), past.Ref())
	require.NoError(t, err)
	require.NoError(t, a.Delete(context.Background(), customerSession(), *found, true))

	assert.Equal(t, 1, backend.deleteCalls)
	assert.Equal(t, []domain.Reservation{keep}, boards.For("sess-customer").Snapshot())
	assert.Equal(t, []EventType{EventReservationDeleted}, events.types())
	assert.Zero(t, backend.getCalls, "lookup served from the board")
}
