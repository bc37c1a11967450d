package widget

import (
	"context"
	"testing"
)

func newSinkFixture(t *testing.T) (*SessionSink, *Session, *recordingPresenter) {
	t.Helper()
	r := NewRegistry()
	p := &recordingPresenter{}
	s, err := r.Create(context.Background(), "w1", baseConfig(), VariantIframe, Deps{
		Backend:   &fakeBackend{},
		Presenter: p,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return NewSessionSink(r), s, p
}

func TestSinkMirrorsOpenCloseIntoSession(t *testing.T) {
	sink, s, _ := newSinkFixture(t)

	sink.WidgetExpanded("w1")
	if !s.IsOpen() {
		t.Error("Expected expanded event to open the session")
	}

	sink.WidgetMinimized("w1")
	if s.IsOpen() {
		t.Error("Expected minimized event to close the session")
	}

	sink.WidgetExpanded("w1")
	sink.WidgetClosed("w1")
	if s.IsOpen() {
		t.Error("Expected close event to close the session")
	}
}

func TestSinkNewMessageFeedsUnreadBadge(t *testing.T) {
	sink, s, p := newSinkFixture(t)

	sink.MessageReceived("w1", "new answer")
	sink.MessageReceived("w1", "another")
	if s.Unread() != 2 {
		t.Errorf("Expected 2 unread, got %d", s.Unread())
	}
	if got := p.lastBadge(); got != "2" {
		t.Errorf("Expected badge 2, got %q", got)
	}

	// The signal tracks a reply already in the log; it must not append.
	if got := len(s.Messages()); got != 1 {
		t.Errorf("Expected only the welcome message in the log, got %d", got)
	}

	// No unread accounting while the widget is open.
	sink.WidgetExpanded("w1")
	sink.MessageReceived("w1", "seen live")
	if s.Unread() != 0 {
		t.Errorf("Expected no unread while open, got %d", s.Unread())
	}
}

func TestSinkIgnoresUnknownWidget(t *testing.T) {
	sink, s, _ := newSinkFixture(t)

	sink.WidgetExpanded("ghost")
	sink.MessageReceived("ghost", "hi")
	sink.WidgetClosed("ghost")

	if s.IsOpen() || s.Unread() != 0 {
		t.Error("Expected events for unknown widgets to be dropped")
	}
}
