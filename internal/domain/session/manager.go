package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/jwt"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager opens and closes sessions. Each session gets a one-time expiry job;
// ending the session any other way removes the job so no stale callback fires later.
type Manager struct {
	auth   Authenticator
	store  Store
	tokens *jwt.Service
	sched  gocron.Scheduler
	log    *logrus.Entry

	mu        sync.Mutex
	jobs      map[string]uuid.UUID
	listeners []func(sessionID string)
}

func NewManager(auth Authenticator, store Store, tokens *jwt.Service, sched gocron.Scheduler, log *logrus.Logger) *Manager {
	return &Manager{
		auth:   auth,
		store:  store,
		tokens: tokens,
		sched:  sched,
		log:    log.WithField("component", "session"),
		jobs:   make(map[string]uuid.UUID),
	}
}

// OnEnd registers a callback run after a session ends by logout or expiry.
func (m *Manager) OnEnd(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login authenticates against the backend and returns the session with a signed gateway token.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, "", apperr.Validation("email", "Email is required")
	}
	if password == "" {
		return nil, "", apperr.Validation("password", "Password is required")
	}

	creds, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	sess := &Session{
		ID:           uuid.NewString(),
		User:         creds.User,
		BackendToken: creds.Token,
	}
	token, expiresAt, err := m.tokens.GenerateToken(creds.User.ID, string(creds.User.Role), sess.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	if !creds.ExpiresAt.IsZero() && creds.ExpiresAt.Before(expiresAt) {
		expiresAt = creds.ExpiresAt
	}
	sess.ExpiresAt = expiresAt

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	if err := m.scheduleExpiry(sess); err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return nil, "", err
	}

	m.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"user_id":    sess.User.ID,
		"role":       sess.User.Role,
		"expires_at": sess.ExpiresAt,
	}).Info("session opened")
	return sess, token, nil
}

// Resolve turns a gateway token into a live session.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := m.tokens.ValidateToken(token)
	if err != nil || claims.SessionID == "" {
		return nil, apperr.ErrAuthRequired
	}
	sess, err := m.store.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, apperr.ErrAuthRequired
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		m.cancelExpiry(sess.ID)
		m.end(ctx, sess.ID, "expired")
		return nil, apperr.ErrAuthRequired
	}
	return sess, nil
}

func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.cancelExpiry(sessionID)
	m.end(ctx, sessionID, "logout")
	return nil
}

// cancelExpiry removes the session's pending expiry job, if any.
func (m *Manager) cancelExpiry(sessionID string) {
	m.mu.Lock()
	jobID, ok := m.jobs[sessionID]
	delete(m.jobs, sessionID)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := m.sched.RemoveJob(jobID); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		m.log.WithError(err).WithField("session_id", sessionID).Warn("failed to cancel expiry job")
	}
}

func (m *Manager) scheduleExpiry(sess *Session) error {
	job, err := m.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(sess.ExpiresAt)),
		gocron.NewTask(m.expire, sess.ID),
	)
	if err != nil {
		return fmt.Errorf("schedule session expiry: %w", err)
	}
	m.mu.Lock()
	m.jobs[sess.ID] = job.ID()
	m.mu.Unlock()
	return nil
}

// expire runs from the scheduler. A session already ended elsewhere has no job entry left.
func (m *Manager) expire(sessionID string) {
	m.mu.Lock()
	_, ok := m.jobs[sessionID]
	delete(m.jobs, sessionID)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.end(context.Background(), sessionID, "expired")
}

func (m *Manager) end(ctx context.Context, sessionID, reason string) {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.WithError(err).WithField("session_id", sessionID).Warn("failed to delete session")
	}

	m.mu.Lock()
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(sessionID)
	}
	m.log.WithFields(logrus.Fields{"session_id": sessionID, "reason": reason}).Info("session closed")
}
