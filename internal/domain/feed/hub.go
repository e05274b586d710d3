// Package feed pushes reservation lifecycle events to connected browsers so
// listing views know when to re-fetch.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"travelbooking/internal/domain/reservation"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 256
)

// Message is what a client receives over the socket.
type Message struct {
	Type  string             `json:"type"`
	Event *reservation.Event `json:"event,omitempty"`
}

const (
	MessageReservation = "reservation_event"
	MessagePong        = "pong"
)

type connection struct {
	userID    string
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub tracks open sockets per user. One user may hold several sockets.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*connection]struct{}
	log         *logrus.Entry
}

var _ reservation.EventPublisher = (*Hub)(nil)

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*connection]struct{}),
		log:         log.WithField("component", "feed_hub"),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.connections[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.connections[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.connections, c.userID)
	}
}

// Publish delivers the event to the reservation's customer and provider.
func (h *Hub) Publish(_ context.Context, ev reservation.Event) error {
	data, err := json.Marshal(Message{Type: MessageReservation, Event: &ev})
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, uid := range []string{ev.CustomerID, ev.ProviderID} {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		h.SendToUser(uid, data)
	}
	return nil
}

// SendToUser reports whether at least one socket took the message.
func (h *Hub) SendToUser(userID string, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := false
	for c := range h.connections[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
			h.log.WithField("user_id", userID).Warn("feed client too slow, dropping message")
		}
	}
	return delivered
}

// CloseSession drops every socket opened under the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	var victims []*connection
	for _, set := range h.connections {
		for c := range set {
			if c.sessionID == sessionID {
				victims = append(victims, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range victims {
		h.unregister(c)
	}
}

// Connected returns the number of open sockets for the user.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// ServeWS registers the socket and blocks until the client goes away.
func (h *Hub) ServeWS(conn *websocket.Conn, userID, sessionID string) {
	c := &connection{
		userID:    userID,
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.log.WithFields(logrus.Fields{"user_id": userID, "session_id": sessionID}).Debug("feed client connected")

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.WithField("user_id", c.userID).Debug("feed client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pong, _ := json.Marshal(Message{Type: MessagePong})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("user_id", c.userID).Warn("feed socket error")
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		if in.Type == "ping" {
			h.trySend(c, pong)
		}
	}
}

func (h *Hub) trySend(c *connection, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
