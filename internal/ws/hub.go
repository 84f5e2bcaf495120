// Package ws bridges the in-process event bus to staff dashboard clients
// over websockets. Every connected client receives every event; the
// dashboard renders what it cares about.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from a different origin in development.
		return true
	},
}

// envelope is the wire format pushed to clients.
type envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub tracks connected dashboard clients and fans events out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	// dashLimiter coalesces dashboardUpdated bursts. Reconciliation and
	// booking writes each emit one; clients only need a refresh hint every
	// so often.
	dashLimiter *rate.Limiter

	logger zerolog.Logger
}

// NewHub constructs an empty hub. Dashboard refresh hints are throttled to
// one per second with a small burst.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*websocket.Conn]struct{}),
		dashLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:      logger.With().Str("component", "ws").Logger(),
	}
}

// Attach subscribes the hub to the full event stream.
func (h *Hub) Attach(bus *events.EventBus) {
	bus.SubscribeAll(func(event events.Event) error {
		if event.Type == events.DashboardUpdated && !h.dashLimiter.Allow() {
			return nil
		}
		h.Broadcast(event.Type, event.Payload)
		return nil
	})
}

// HandleWS upgrades the connection and keeps it registered until the client
// goes away. Reads are discarded; the stream is one-way.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.add(conn)
	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetWSClients(n)
	h.logger.Debug().Int("clients", n).Msg("client connected")
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	conn.Close()
	metrics.SetWSClients(n)
	h.logger.Debug().Int("clients", n).Msg("client disconnected")
}

// Broadcast sends one event to every connected client, dropping clients
// whose writes fail.
func (h *Hub) Broadcast(eventType string, payload []byte) {
	msg, err := json.Marshal(envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event", eventType).Msg("marshal broadcast")
		return
	}

	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetWSClients(n)
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
