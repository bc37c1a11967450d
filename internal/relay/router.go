// Package relay routes messages between a host page connection and its
// embedded widget frame connection. Every inbound message is checked against
// an exact-match origin allow-list before anything else happens.
package relay

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/chatbotku/embedkit/internal/metrics"
)

// Event types emitted by the widget frame toward its host page.
const (
	EventReady      = "chatbot-ready"
	EventExpanded   = "chatbot-expanded"
	EventShowIframe = "chatbot-show-iframe"
	EventMinimized  = "chatbot-minimized"
	EventHideIframe = "chatbot-hide-iframe"
	EventNewMessage = "chatbot-new-message"
	EventError      = "chatbot-error"
	EventResize     = "chatbot-resize"
	EventClose      = "chatbot-close"
)

// Command types sent by the host page toward the widget frame.
const (
	CommandShowWidget     = "show-widget"
	CommandMinimizeWidget = "minimize-widget"
	CommandSendMessage    = "send-message"
	CommandFocusInput     = "focus-input"
)

// maxFrameHeight caps the height a frame may request for itself.
const maxFrameHeight = 600

// ErrOriginRejected is returned for messages from origins outside the
// allow-list. No state changes and nothing is forwarded.
var ErrOriginRejected = errors.New("relay: origin not allowed")

// Message is the wire envelope for both events and commands.
type Message struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Height int    `json:"height,omitempty"`
}

// EventSink receives the widget frame's events after validation. The host
// server uses it to mirror frame state into the local widget session.
type EventSink interface {
	WidgetReady(widgetID string)
	WidgetExpanded(widgetID string)
	WidgetMinimized(widgetID string)
	WidgetClosed(widgetID string)
	MessageReceived(widgetID, text string)
	ErrorReported(widgetID, text string)
	FrameResized(widgetID string, height int)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) WidgetReady(string)             {}
func (NopSink) WidgetExpanded(string)          {}
func (NopSink) WidgetMinimized(string)         {}
func (NopSink) WidgetClosed(string)            {}
func (NopSink) MessageReceived(string, string) {}
func (NopSink) ErrorReported(string, string)   {}
func (NopSink) FrameResized(string, int)       {}

// Router validates origins and dispatches widget events to a sink.
type Router struct {
	allowed map[string]struct{}
	sink    EventSink
}

// NewRouter builds a router for the given exact-match origins. An entry of
// "*" allows every origin.
func NewRouter(allowedOrigins []string, sink EventSink) *Router {
	if sink == nil {
		sink = NopSink{}
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Router{allowed: allowed, sink: sink}
}

// OriginAllowed reports whether origin passes the allow-list. Matching is
// exact; "https://evil.example.com?https://trusted.example.com" does not pass.
func (r *Router) OriginAllowed(origin string) bool {
	if _, ok := r.allowed["*"]; ok {
		return true
	}
	_, ok := r.allowed[origin]
	return ok
}

// HandleEvent validates and dispatches one raw frame event for widgetID. It
// returns the parsed message and whether it should be forwarded to the host
// peer. Unknown types are ignored without error; rejected origins produce
// ErrOriginRejected and no side effect.
func (r *Router) HandleEvent(origin, widgetID string, raw []byte) (Message, bool, error) {
	if !r.OriginAllowed(origin) {
		slog.Warn("Relay message rejected", "origin", origin)
		metrics.RelayRejectedTotal.Inc()
		return Message{}, false, ErrOriginRejected
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, false, nil
	}

	switch msg.Type {
	case EventReady:
		r.sink.WidgetReady(widgetID)
	case EventExpanded, EventShowIframe:
		r.sink.WidgetExpanded(widgetID)
	case EventMinimized, EventHideIframe:
		r.sink.WidgetMinimized(widgetID)
	case EventClose:
		r.sink.WidgetClosed(widgetID)
	case EventNewMessage:
		r.sink.MessageReceived(widgetID, msg.Text)
	case EventError:
		r.sink.ErrorReported(widgetID, msg.Text)
	case EventResize:
		msg.Height = clampHeight(msg.Height)
		r.sink.FrameResized(widgetID, msg.Height)
	default:
		// Forward nothing for types this protocol does not know.
		return msg, false, nil
	}

	metrics.RelayMessagesTotal.WithLabelValues(msg.Type).Inc()
	return msg, true, nil
}

// HandleCommand validates one raw host command and returns whether it should
// be forwarded to the widget frame.
func (r *Router) HandleCommand(origin string, raw []byte) (Message, bool, error) {
	if !r.OriginAllowed(origin) {
		slog.Warn("Relay command rejected", "origin", origin)
		metrics.RelayRejectedTotal.Inc()
		return Message{}, false, ErrOriginRejected
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, false, nil
	}

	switch msg.Type {
	case CommandShowWidget, CommandMinimizeWidget, CommandSendMessage, CommandFocusInput:
		metrics.RelayMessagesTotal.WithLabelValues(msg.Type).Inc()
		return msg, true, nil
	default:
		return msg, false, nil
	}
}

func clampHeight(h int) int {
	if h <= 0 || h > maxFrameHeight {
		return maxFrameHeight
	}
	return h
}
