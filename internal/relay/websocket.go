package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// WebSocketHandler upgrades relay connections and pumps messages between the
// two sides of a widget channel.
type WebSocketHandler struct {
	hub    *Hub
	router *Router
	isDev  bool
}

// NewWebSocketHandler creates a relay endpoint handler. In dev mode the
// origin check is skipped so local pages on any port can connect.
func NewWebSocketHandler(hub *Hub, router *Router, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, router: router, isDev: isDev}
}

// ServeHTTP implements http.Handler for WebSocket upgrade. The peer declares
// its widget ID and role via query parameters.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("widget")
	if widgetID == "" {
		http.Error(w, "widget id required", http.StatusBadRequest)
		return
	}
	role := Role(r.URL.Query().Get("role"))
	if role != RoleHost && role != RoleWidget {
		http.Error(w, "role must be host or widget", http.StatusBadRequest)
		return
	}

	origin := r.Header.Get("Origin")
	slog.Info("Relay connection request", "widget_id", widgetID, "role", string(role), "origin", origin, "ip", r.RemoteAddr)

	if !h.checkOrigin(origin) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept relay WebSocket", "error", err, "widget_id", widgetID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "channel ended"); closeErr != nil {
			slog.Debug("Failed to close relay websocket", "error", closeErr, "widget_id", widgetID)
		}
	}()

	h.hub.Register(widgetID, role, ws)
	defer h.hub.Unregister(widgetID, role, ws)

	h.readLoop(r, ws, widgetID, role, origin)
	slog.Info("Relay connection ended", "widget_id", widgetID, "role", string(role))
}

func (h *WebSocketHandler) checkOrigin(origin string) bool {
	if h.isDev || origin == "" {
		return true
	}
	return h.router.OriginAllowed(origin)
}

func (h *WebSocketHandler) readLoop(r *http.Request, ws *websocket.Conn, widgetID string, role Role, origin string) {
	ctx := r.Context()
	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Relay WebSocket closed by client", "widget_id", widgetID)
			} else {
				slog.Warn("Relay WebSocket read error", "error", err, "widget_id", widgetID)
			}
			return
		}

		if isPing(raw) {
			data, _ := json.Marshal(Message{Type: "pong"})
			if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("Failed to send pong", "error", err, "widget_id", widgetID)
			}
			continue
		}

		var (
			msg     Message
			forward bool
		)
		if role == RoleWidget {
			msg, forward, err = h.router.HandleEvent(origin, widgetID, raw)
		} else {
			msg, forward, err = h.router.HandleCommand(origin, raw)
		}
		if err != nil {
			// Rejected origin after upgrade: drop the channel.
			return
		}
		if !forward {
			continue
		}

		if err := h.hub.Send(ctx, widgetID, role.Peer(), msg); err != nil {
			slog.Warn("Relay forward failed", "error", err, "widget_id", widgetID, "type", msg.Type)
		}
	}
}

func isPing(raw []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Type == "ping"
}
