package reservation

import (
	"context"
	"io"
	"sync"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// MockBackend is used where call expectations matter.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetService(ctx context.Context, t domain.ServiceType, id string) ([]byte, error) {
	args := m.Called(ctx, t, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) CreateReservation(ctx context.Context, token string, p *CreatePayload) (*domain.Reservation, error) {
	args := m.Called(ctx, token, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBackend) ListReservations(ctx context.Context, token string, a Audience, src Source) ([]domain.Reservation, error) {
	args := m.Called(ctx, token, a, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockBackend) GetReservation(ctx context.Context, token string, ref domain.ReservationRef) (*domain.Reservation, error) {
	args := m.Called(ctx, token, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBackend) UpdateReservationStatus(ctx context.Context, token string, ref domain.ReservationRef, u StatusUpdate) error {
	return m.Called(ctx, token, ref, u).Error(0)
}

func (m *MockBackend) DeleteReservation(ctx context.Context, token string, ref domain.ReservationRef) error {
	return m.Called(ctx, token, ref).Error(0)
}

// fakeBackend keeps reservations in memory and enforces pending-only transitions.
type fakeBackend struct {
	mu          sync.Mutex
	records     map[domain.ReservationRef]domain.Reservation
	listings    map[string][]domain.Reservation
	listErrs    map[string]error
	updateCalls int
	deleteCalls int
	getCalls    int
}

func newFakeBackend(records ...domain.Reservation) *fakeBackend {
	f := &fakeBackend{
		records:  make(map[domain.ReservationRef]domain.Reservation),
		listings: make(map[string][]domain.Reservation),
		listErrs: make(map[string]error),
	}
	for _, r := range records {
		f.records[r.Ref()] = r
	}
	return f
}

func (f *fakeBackend) GetService(context.Context, domain.ServiceType, string) ([]byte, error) {
	return []byte(`{"id":"svc","price":100}`), nil
}

func (f *fakeBackend) CreateReservation(_ context.Context, _ string, p *CreatePayload) (*domain.Reservation, error) {
	return &domain.Reservation{ID: "new", ServiceType: p.ServiceType, Status: domain.ReservationPending}, nil
}

func (f *fakeBackend) ListReservations(_ context.Context, _ string, _ Audience, src Source) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErrs[src.Name]; err != nil {
		return nil, err
	}
	return append([]domain.Reservation(nil), f.listings[src.Name]...), nil
}

func (f *fakeBackend) GetReservation(_ context.Context, _ string, ref domain.ReservationRef) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	r, ok := f.records[ref]
	if !ok {
		return nil, &apperr.BackendError{Status: 404, Message: "Reservation not found"}
	}
	return &r, nil
}

func (f *fakeBackend) UpdateReservationStatus(_ context.Context, _ string, ref domain.ReservationRef, u StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	r, ok := f.records[ref]
	if !ok {
		return &apperr.BackendError{Status: 404, Message: "Reservation not found"}
	}
	if r.Status != domain.ReservationPending {
		return &apperr.BackendError{Status: 409, Message: "Reservation is no longer pending"}
	}
	r.Status = u.Status
	r.RejectionReason = u.RejectionReason
	f.records[ref] = r
	return nil
}

func (f *fakeBackend) DeleteReservation(_ context.Context, _ string, ref domain.ReservationRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	delete(f.records, ref)
	return nil
}

func (f *fakeBackend) status(ref domain.ReservationRef) domain.ReservationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[ref].Status
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func customerSession() *session.Session {
	return &session.Session{
		ID:           "sess-customer",
		BackendToken: "customer-token",
		ExpiresAt:    time.Now().Add(time.Hour),
		User: domain.User{
			ID:    "c-1",
			Name:  "Ayesha Khan",
			Email: "ayesha@example.com",
			Phone: "+92 300 1234567",
			Role:  domain.RoleCustomer,
		},
	}
}

func providerSession() *session.Session {
	return &session.Session{
		ID:           "sess-provider",
		BackendToken: "provider-token",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         domain.User{ID: "p-1", Name: "Hotel Owner", Email: "owner@example.com", Role: domain.RoleProvider},
	}
}
