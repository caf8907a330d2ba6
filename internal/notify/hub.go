package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans events out to WebSocket clients keyed by user and role.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	logger   *zap.Logger
	upgrader websocket.Upgrader

	writeTimeout time.Duration
	now          func() time.Time
}

var _ Notifier = (*Hub)(nil)

func NewHub(logger *zap.Logger, writeTimeout time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		clients:      make(map[*client]struct{}),
		logger:       logger,
		writeTimeout: writeTimeout,
		now:          time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve upgrades an already authenticated request and blocks until the
// connection ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID, role string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:           uuid.NewString(),
		userID:       userID,
		role:         role,
		ws:           conn,
		send:         make(chan []byte, 16),
		done:         make(chan struct{}),
		writeTimeout: h.writeTimeout,
		logger:       h.logger,
		onClose:      h.remove,
	}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	h.logger.Info("ws client connected", zap.String("user_id", userID), zap.String("role", role))
	c.start()
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.logger.Debug("ws client disconnected", zap.String("user_id", c.userID))
}

func (h *Hub) NotifyUser(userID string, evt Event) {
	h.broadcast(evt, func(c *client) bool { return c.userID == userID })
}

func (h *Hub) NotifyRole(role string, evt Event) {
	h.broadcast(evt, func(c *client) bool { return c.role == role })
}

func (h *Hub) broadcast(evt Event, match func(*client) bool) {
	if evt.At.IsZero() {
		evt.At = h.now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("encode ws event", zap.String("type", evt.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if match(c) {
			c.enqueue(payload)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
