package feed

import (
	"context"
	"net/http"
	"strings"

	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type WSHandler struct {
	hub      *Hub
	sessions SessionResolver
	upgrader websocket.Upgrader
}

// NewWSHandler accepts browser origins from the list; "*" or an empty list allows any.
func NewWSHandler(hub *Hub, sessions SessionResolver, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/reservations", h.HandleWebSocket)
}

// HandleWebSocket serves GET /ws/reservations?token=SESSION_TOKEN.
// Browsers cannot set headers on the upgrade, so the token travels in the query.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Token is required. Use ?token=YOUR_SESSION_TOKEN")
		return
	}

	sess, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Invalid or expired session")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.hub.ServeWS(conn, sess.User.ID, sess.ID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}
