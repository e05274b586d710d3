package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/jwt"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*Credentials, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Credentials), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupManager(t *testing.T, ttl time.Duration) (*Manager, *MockAuthenticator, *MemoryStore) {
	t.Helper()
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	sched.Start()
	t.Cleanup(func() { _ = sched.Shutdown() })

	auth := new(MockAuthenticator)
	store := NewMemoryStore()
	return NewManager(auth, store, jwt.New("test-secret", ttl), sched, quietLogger()), auth, store
}

func providerCreds() *Credentials {
	return &Credentials{
		Token: "backend-token",
		User:  domain.User{ID: "p-1", Name: "Provider", Email: "p@example.com", Role: domain.RoleProvider},
	}
}

func TestManager_LoginAndResolve(t *testing.T) {
	m, auth, _ := setupManager(t, time.Hour)
	auth.On("Login", mock.Anything, "p@example.com", "secret").Return(providerCreds(), nil)

	sess, token, err := m.Login(context.Background(), " P@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "backend-token", sess.BackendToken)

	resolved, err := m.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, resolved.ID)
	assert.Equal(t, domain.RoleProvider, resolved.User.Role)
}

func TestManager_LoginValidation(t *testing.T) {
	m, auth, _ := setupManager(t, time.Hour)

	_, _, err := m.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_LoginBackendFailure(t *testing.T) {
	m, auth, _ := setupManager(t, time.Hour)
	auth.On("Login", mock.Anything, "p@example.com", "bad").
		Return(nil, &apperr.BackendError{Status: 401, Message: "Invalid credentials"})

	_, _, err := m.Login(context.Background(), "p@example.com", "bad")
	var be *apperr.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "Invalid credentials", be.Message)
}

func TestManager_ExpiryRunsScheduledJob(t *testing.T) {
	m, auth, store := setupManager(t, 300*time.Millisecond)
	auth.On("Login", mock.Anything, "p@example.com", "secret").Return(providerCreds(), nil)

	var ended atomic.Value
	m.OnEnd(func(id string) { ended.Store(id) })

	sess, _, err := m.Login(context.Background(), "p@example.com", "secret")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		id, _ := ended.Load().(string)
		return id == sess.ID
	}, 3*time.Second, 20*time.Millisecond)

	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_LogoutCancelsExpiry(t *testing.T) {
	m, auth, _ := setupManager(t, time.Hour)
	auth.On("Login", mock.Anything, "p@example.com", "secret").Return(providerCreds(), nil)

	var calls atomic.Int32
	m.OnEnd(func(string) { calls.Add(1) })

	sess, token, err := m.Login(context.Background(), "p@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, m.Logout(context.Background(), sess.ID))

	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
	assert.Equal(t, int32(1), calls.Load())

	m.mu.Lock()
	_, pending := m.jobs[sess.ID]
	m.mu.Unlock()
	assert.False(t, pending)
	assert.Eventually(t, func() bool { return len(m.sched.Jobs()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestManager_ResolveRejectsGarbage(t *testing.T) {
	m, _, _ := setupManager(t, time.Hour)

	_, err := m.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
}

// keepingStore hands back sessions even after they expire, like a store whose TTL lags the token.
type keepingStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func (s *keepingStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *keepingStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *keepingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func TestManager_ResolveOfExpiredSessionEndsItOnce(t *testing.T) {
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	sched.Start()
	t.Cleanup(func() { _ = sched.Shutdown() })

	auth := new(MockAuthenticator)
	auth.On("Login", mock.Anything, "p@example.com", "secret").Return(providerCreds(), nil)
	store := &keepingStore{sessions: map[string]*Session{}}
	m := NewManager(auth, store, jwt.New("test-secret", time.Hour), sched, quietLogger())

	var calls atomic.Int32
	m.OnEnd(func(string) { calls.Add(1) })

	sess, token, err := m.Login(context.Background(), "p@example.com", "secret")
	require.NoError(t, err)

	stale := *sess
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(context.Background(), &stale))

	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrAuthRequired)
	assert.Equal(t, int32(1), calls.Load())

	m.mu.Lock()
	_, pending := m.jobs[sess.ID]
	m.mu.Unlock()
	assert.False(t, pending)
	assert.Eventually(t, func() bool { return len(m.sched.Jobs()) == 0 }, time.Second, 10*time.Millisecond)

	// a late scheduler callback must not end the session again
	m.expire(sess.ID)
	assert.Equal(t, int32(1), calls.Load())
}
