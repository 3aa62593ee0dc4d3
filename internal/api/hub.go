package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/uodit05/algo-trade-test-1/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans simulation events out to connected websocket clients. A
// client that fails a write is dropped; slow consumers never block the
// simulation because Broadcast discards when the queue is full.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mu        sync.Mutex
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// NewHub creates a hub. The metrics registry may be nil.
func NewHub(logger *zap.Logger, reg *metrics.Registry) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
		logger:    logger,
		metrics:   reg,
	}
}

// Run delivers queued messages until the context is cancelled, then
// closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Close()
					delete(h.clients, client)
					if h.metrics != nil {
						h.metrics.WSClientDisconnected()
					}
					h.logger.Debug("websocket client dropped", zap.Error(err))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a JSON-encoded message for all clients. Messages are
// dropped when the queue is full or the value cannot be encoded.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Warn("broadcast encode failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the connection. Inbound
// messages are read and discarded; the read loop exists to detect
// client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSClientConnected()
	}
	h.logger.Info("websocket client connected", zap.String("remote", r.RemoteAddr))

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(conn)
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
		if h.metrics != nil {
			h.metrics.WSClientDisconnected()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
		if h.metrics != nil {
			h.metrics.WSClientDisconnected()
		}
	}
}
