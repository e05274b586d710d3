package session

import (
	"context"
	"errors"
	"time"

	"travelbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key holding the authenticated *Session.
const ContextKey = "session"

var ErrSessionNotFound = errors.New("session not found")

// Session is the authenticated context passed explicitly to every operation
// that talks to the backend on the user's behalf.
type Session struct {
	ID           string      `json:"id"`
	User         domain.User `json:"user"`
	BackendToken string      `json:"backendToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Credentials is what the backend hands back after a successful login.
type Credentials struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
}

type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// FromGin returns the session set by the auth middleware, or nil.
func FromGin(c *gin.Context) *Session {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
