package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/marcus/isle/internal/models"
)

// subscriberBuffer is the per-client event buffer. A client that falls this
// far behind the feed is dropped rather than blocking the broadcaster.
const subscriberBuffer = 64

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is public to anyone who can reach the server; no origin check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans change events out to all connected stream subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan models.Change]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.Change]struct{})}
}

// subscribe registers a new subscriber channel.
// Returns nil if the hub is already closed.
func (h *Hub) subscribe() chan models.Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	ch := make(chan models.Change, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return ch
}

// unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) unsubscribe(ch chan models.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Broadcast delivers a change to every subscriber. Subscribers whose buffer
// is full are dropped; the broadcaster never blocks.
func (h *Hub) Broadcast(change models.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- change:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Close drops all subscribers and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// handleStream handles GET /v1/todos/stream: upgrades to a websocket and
// forwards every broadcast change as one JSON message until the client
// disconnects or the hub shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logFor(r.Context()).Warn("stream upgrade", "err", err)
		return
	}

	ch := s.hub.subscribe()
	if ch == nil {
		conn.Close()
		return
	}

	s.metrics.StreamConnected()
	log := logFor(r.Context())
	log.Info("stream client connected")

	defer func() {
		s.hub.unsubscribe(ch)
		conn.Close()
		s.metrics.StreamDisconnected()
		log.Info("stream client disconnected")
	}()

	// Reader goroutine: we never expect client messages, but reading is
	// required to notice disconnects and answer control frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case change, ok := <-ch:
			if !ok {
				// Hub closed or this client was dropped as too slow
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(change); err != nil {
				log.Debug("stream write", "err", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
