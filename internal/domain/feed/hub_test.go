package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/domain/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]*session.Session

func (s stubResolver) Resolve(_ context.Context, token string) (*session.Session, error) {
	if sess, ok := s[token]; ok {
		return sess, nil
	}
	return nil, errors.New("unknown token")
}

func setupFeed(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := NewHub(log)

	resolver := stubResolver{
		"customer-token": {ID: "sess-c", User: domain.User{ID: "c-1", Role: domain.RoleCustomer}},
		"provider-token": {ID: "sess-p", User: domain.User{ID: "p-1", Role: domain.RoleProvider}},
	}
	r := gin.New()
	NewWSHandler(hub, resolver, nil).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reservations?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHub_PublishReachesCustomerAndProvider(t *testing.T) {
	hub, srv := setupFeed(t)
	customer := dial(t, srv, "customer-token")
	provider := dial(t, srv, "provider-token")

	require.Eventually(t, func() bool {
		return hub.Connected("c-1") == 1 && hub.Connected("p-1") == 1
	}, time.Second, 10*time.Millisecond)

	ev := reservation.NewEvent(reservation.EventReservationConfirmed, domain.Reservation{
		ID:          "r-1",
		RecordKind:  domain.RecordService,
		ServiceType: domain.ServiceHotel,
		Status:      domain.ReservationConfirmed,
		CustomerID:  "c-1",
		ProviderID:  "p-1",
	}, "p-1")
	require.NoError(t, hub.Publish(context.Background(), ev))

	for _, conn := range []*websocket.Conn{customer, provider} {
		msg := readMessage(t, conn)
		assert.Equal(t, MessageReservation, msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, reservation.EventReservationConfirmed, msg.Event.Type)
		assert.Equal(t, "r-1", msg.Event.Reservation.ID)
	}
}

func TestHub_PingPong(t *testing.T) {
	_, srv := setupFeed(t)
	conn := dial(t, srv, "customer-token")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, MessagePong, readMessage(t, conn).Type)
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	_, srv := setupFeed(t)

	res, err := http.Get(srv.URL + "/ws/reservations")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reservations?token=forged"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_CloseSessionDropsSockets(t *testing.T) {
	hub, srv := setupFeed(t)
	conn := dial(t, srv, "customer-token")
	require.Eventually(t, func() bool { return hub.Connected("c-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.CloseSession("sess-c")
	assert.Zero(t, hub.Connected("c-1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com/"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
