// Package dashboard fans pipeline boundary events out to connected
// supervisor dashboards over websockets.
package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jdhruv555/aura-assist/internal/pipeline"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

const defaultWriteTimeout = 5 * time.Second

// Event is the wire form of a pipeline boundary event.
type Event struct {
	Type   string               `json:"type"` // call_started, call_update, call_ended
	CallID string               `json:"call_id,omitempty"`
	Update *pipeline.TurnResult `json:"update,omitempty"`
}

// Hub tracks dashboard connections and broadcasts events to all of
// them. It implements pipeline.Emitter. A client that cannot be written
// to within the write timeout is dropped.
type Hub struct {
	logger       *logging.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[*websocket.Conn]struct{}),
	}
}

// ServeWS upgrades the request and keeps the connection registered until
// the client goes away. Inbound messages are discarded; the dashboard
// socket is broadcast-only.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("dashboard: websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("dashboard client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		h.remove(conn)
		h.logger.Info("dashboard client disconnected", "remote", conn.RemoteAddr().String())
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast writes the event to every connected client, dropping the
// ones that fail. h.mu is held across the writes: gorilla connections
// allow at most one concurrent writer, and boundary events arrive from
// many call goroutines at once.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("dashboard: dropping unwritable client",
				"remote", conn.RemoteAddr().String(), "error", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// CallStarted implements pipeline.Emitter.
func (h *Hub) CallStarted(callID string) {
	h.Broadcast(Event{Type: "call_started", CallID: callID})
}

// CallUpdate implements pipeline.Emitter.
func (h *Hub) CallUpdate(result pipeline.TurnResult) {
	h.Broadcast(Event{Type: "call_update", CallID: result.CallID, Update: &result})
}

// CallEnded implements pipeline.Emitter.
func (h *Hub) CallEnded(callID string) {
	h.Broadcast(Event{Type: "call_ended", CallID: callID})
}

// ClientCount reports how many dashboards are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}
