package middleware

import (
	"context"
	"net/http"
	"strings"

	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// SessionAuth requires a live gateway session and stores it under session.ContextKey.
func SessionAuth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		sess, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Your session has ended. Please sign in again.")
			return
		}

		attachSession(c, sess)
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is sent and lets
// anonymous requests through; handlers decide what anonymous callers get.
func OptionalSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _, _ := bearerToken(c); token != "" {
			if sess, err := sessions.Resolve(c.Request.Context(), token); err == nil {
				attachSession(c, sess)
			}
		}
		c.Next()
	}
}

// JWTAuth validates backend-issued tokens and sets user_id and role.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func attachSession(c *gin.Context, sess *session.Session) {
	c.Set(session.ContextKey, sess)
	c.Set(userIDKey, sess.User.ID)
	c.Set(roleKey, string(sess.User.Role))
}

func bearerToken(c *gin.Context) (token, code, message string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), "", ""
}

// UserID returns the authenticated user id set by JWTAuth or SessionAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func Role(c *gin.Context) string {
	return c.GetString(roleKey)
}
