package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The display layer may be served from a different origin in
	// development; records are read-only public data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// slotEvent is one change notification pushed to display-layer clients.
type slotEvent struct {
	Type string `json:"type"` // "record_updated" or "record_added"
	Slot int    `json:"slot"`
}

// Hub fans single-slot change notifications out to connected WebSocket
// clients. It implements domain.StoreListener; notifications arrive
// synchronously from the refresh workers, so writes are bounded by a
// deadline and a dead client is dropped rather than waited on.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   slog.Default().With(slog.String("component", "ws-hub")),
	}
}

// RecordUpdated broadcasts a single-slot update notification.
func (h *Hub) RecordUpdated(slot int) {
	h.broadcast(slotEvent{Type: "record_updated", Slot: slot})
}

// RecordAdded broadcasts a record-added notification.
func (h *Hub) RecordAdded(slot int) {
	h.broadcast(slotEvent{Type: "record_added", Slot: slot})
}

func (h *Hub) broadcast(ev slotEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Debug("dropping slow or closed client", slog.String("error", err.Error()))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection registered
// until the client goes away. Clients only listen; inbound messages are
// drained and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	h.log.Info("display client connected", slog.Int("clients", n))

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Clients returns the number of connected display clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
