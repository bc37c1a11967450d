package widget

import (
	"context"
	"log/slog"
)

// SessionSink mirrors widget-frame relay events into the live server-side
// session for the same widget. Events for widgets without a session are
// dropped; the frame may be running against a host page that never chatted.
type SessionSink struct {
	registry *Registry
}

// NewSessionSink creates a sink resolving sessions through registry.
func NewSessionSink(registry *Registry) *SessionSink {
	return &SessionSink{registry: registry}
}

func (s *SessionSink) WidgetReady(widgetID string) {
	slog.Info("Widget frame ready", "widget_id", widgetID)
}

func (s *SessionSink) WidgetExpanded(widgetID string) {
	if sess := s.registry.Get(widgetID); sess != nil {
		sess.Open(context.Background())
	}
}

func (s *SessionSink) WidgetMinimized(widgetID string) {
	if sess := s.registry.Get(widgetID); sess != nil {
		sess.Close(context.Background())
	}
}

func (s *SessionSink) WidgetClosed(widgetID string) {
	if sess := s.registry.Get(widgetID); sess != nil {
		sess.Close(context.Background())
	}
}

func (s *SessionSink) MessageReceived(widgetID, _ string) {
	if sess := s.registry.Get(widgetID); sess != nil {
		sess.NotifyNewMessage()
	}
}

func (s *SessionSink) ErrorReported(widgetID, text string) {
	slog.Warn("Widget frame reported error", "widget_id", widgetID, "error", text)
}

func (s *SessionSink) FrameResized(widgetID string, height int) {
	slog.Debug("Widget frame resized", "widget_id", widgetID, "height", height)
}
