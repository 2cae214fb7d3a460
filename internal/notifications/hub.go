// Package notifications provides real-time notification delivery over
// WebSocket connections, fed by per-user Redis push channels.
package notifications

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"soundbite/internal/events"
	"soundbite/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub is a websocket hub that maps user handle -> list of Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	stopped    bool
}

// NewHub creates a new Hub instance for managing notification connections.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*Client]struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register a connection for a given handle. Returns the Client or error if
// limits are exceeded.
func (h *Hub) Register(handle string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil, errors.New("hub is shut down")
	}
	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[handle]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[handle] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, handle)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[client.Handle]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			observability.WebSocketConnections.Dec()
		}
		if len(m) == 0 {
			delete(h.conns, client.Handle)
		}
	}
}

// Broadcast sends message to all connections for handle.
func (h *Hub) Broadcast(handle string, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[handle]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user currently has at least one active connection.
func (h *Hub) IsOnline(handle string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[handle]
	return ok && len(clients) > 0
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// StartWiring subscribes the hub to the per-user push channels and forwards
// messages to matching connections.
func (h *Hub) StartWiring(ctx context.Context, n *events.Notifier) error {
	return n.StartUserSubscriber(ctx, func(channel, payload string) {
		handle, ok := strings.CutPrefix(channel, events.UserChannelPrefix)
		if !ok || handle == "" {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(handle, payload)
	})
}

// Shutdown gracefully disconnects all websocket clients. Closing a client's
// Send channel makes its write pump emit a close message and exit, which in
// turn ends the read pump. Safe to call more than once.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true

	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
		}
	}
	observability.WebSocketConnections.Sub(float64(h.totalConns))
	h.totalConns = 0
	h.conns = make(map[string]map[*Client]struct{})

	return nil
}
