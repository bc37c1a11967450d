package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Role identifies which side of the relay a connection belongs to.
type Role string

const (
	// RoleHost is the embedding page's side of the channel.
	RoleHost Role = "host"
	// RoleWidget is the widget frame's side of the channel.
	RoleWidget Role = "widget"
)

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == RoleHost {
		return RoleWidget
	}
	return RoleHost
}

// Hub tracks the live connection for each (widget, role) pair. At most one
// connection per pair; a newer connection replaces and closes the older one.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[Role]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{active: make(map[string]map[Role]*websocket.Conn)}
}

// Register adds a connection for a widget/role.
func (h *Hub) Register(widgetID string, role Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[widgetID]; !exists {
		h.active[widgetID] = make(map[Role]*websocket.Conn)
	}

	if existing, exists := h.active[widgetID][role]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "connection replaced")
	}

	h.active[widgetID][role] = conn
	slog.Info("Relay connection registered", "widget_id", widgetID, "role", string(role))
}

// Unregister removes a connection for a widget/role, but only if it is still
// the current one.
func (h *Hub) Unregister(widgetID string, role Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roles, ok := h.active[widgetID]; ok {
		if current, exists := roles[role]; exists && current == conn {
			delete(roles, role)
			if len(roles) == 0 {
				delete(h.active, widgetID)
			}
			slog.Info("Relay connection unregistered", "widget_id", widgetID, "role", string(role))
		}
	}
}

// Get returns the active connection for a widget/role, or nil.
func (h *Hub) Get(widgetID string, role Role) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if roles, ok := h.active[widgetID]; ok {
		return roles[role]
	}
	return nil
}

// Send marshals msg and delivers it to the widget/role connection. A missing
// peer is not an error; the frame may still be loading.
func (h *Hub) Send(ctx context.Context, widgetID string, role Role, msg Message) error {
	conn := h.Get(widgetID, role)
	if conn == nil {
		slog.Debug("Relay peer absent, message dropped", "widget_id", widgetID, "role", string(role), "type", msg.Type)
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// CloseAll terminates every connection for a widget.
func (h *Hub) CloseAll(widgetID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roles, ok := h.active[widgetID]
	if !ok {
		return
	}
	for role, conn := range roles {
		_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
		slog.Info("Relay connection closed", "widget_id", widgetID, "role", string(role))
	}
	delete(h.active, widgetID)
}
