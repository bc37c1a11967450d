package relay

import (
	"errors"
	"fmt"
	"testing"
)

type recordingSink struct {
	ready     int
	expanded  int
	minimized int
	closed    int
	messages  []string
	errs      []string
	heights   []int
	widgetIDs []string
}

func (s *recordingSink) seen(widgetID string) { s.widgetIDs = append(s.widgetIDs, widgetID) }

func (s *recordingSink) WidgetReady(id string)     { s.seen(id); s.ready++ }
func (s *recordingSink) WidgetExpanded(id string)  { s.seen(id); s.expanded++ }
func (s *recordingSink) WidgetMinimized(id string) { s.seen(id); s.minimized++ }
func (s *recordingSink) WidgetClosed(id string)    { s.seen(id); s.closed++ }
func (s *recordingSink) MessageReceived(id, text string) {
	s.seen(id)
	s.messages = append(s.messages, text)
}

func (s *recordingSink) ErrorReported(id, text string) {
	s.seen(id)
	s.errs = append(s.errs, text)
}

func (s *recordingSink) FrameResized(id string, h int) {
	s.seen(id)
	s.heights = append(s.heights, h)
}

func (s *recordingSink) total() int {
	return s.ready + s.expanded + s.minimized + s.closed +
		len(s.messages) + len(s.errs) + len(s.heights)
}

const trusted = "https://shop.example.com"

func TestForeignOriginRejectedWithNoSideEffect(t *testing.T) {
	sink := &recordingSink{}
	r := NewRouter([]string{trusted}, sink)

	_, forward, err := r.HandleEvent("https://evil.example.com", "w1", []byte(`{"type":"chatbot-ready"}`))
	if !errors.Is(err, ErrOriginRejected) {
		t.Fatalf("Expected ErrOriginRejected, got %v", err)
	}
	if forward {
		t.Error("Expected rejected message not to be forwarded")
	}
	if sink.total() != 0 {
		t.Errorf("Expected no sink calls for rejected origin, got %d", sink.total())
	}
}

func TestOriginMatchingIsExact(t *testing.T) {
	r := NewRouter([]string{trusted}, nil)

	tests := []struct {
		origin string
		want   bool
	}{
		{trusted, true},
		{"https://shop.example.com.evil.net", false},
		{"http://shop.example.com", false},
		{"https://shop.example.com:8443", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := r.OriginAllowed(tt.origin); got != tt.want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestWildcardAllowsEverything(t *testing.T) {
	r := NewRouter([]string{"*"}, nil)
	if !r.OriginAllowed("https://anything.example.org") {
		t.Error("Expected wildcard to allow any origin")
	}
}

func TestEventDispatch(t *testing.T) {
	sink := &recordingSink{}
	r := NewRouter([]string{trusted}, sink)

	events := []string{
		`{"type":"chatbot-ready"}`,
		`{"type":"chatbot-expanded"}`,
		`{"type":"chatbot-show-iframe"}`,
		`{"type":"chatbot-minimized"}`,
		`{"type":"chatbot-hide-iframe"}`,
		`{"type":"chatbot-close"}`,
		`{"type":"chatbot-new-message","text":"hello"}`,
		`{"type":"chatbot-error","text":"boom"}`,
	}
	for _, e := range events {
		if _, forward, err := r.HandleEvent(trusted, "w1", []byte(e)); err != nil || !forward {
			t.Errorf("HandleEvent(%s) = forward %v, err %v", e, forward, err)
		}
	}

	if sink.ready != 1 || sink.expanded != 2 || sink.minimized != 2 || sink.closed != 1 {
		t.Errorf("Unexpected dispatch counts: %+v", sink)
	}
	for _, id := range sink.widgetIDs {
		if id != "w1" {
			t.Errorf("Expected every event tagged with widget w1, got %q", id)
		}
	}
	if len(sink.messages) != 1 || sink.messages[0] != "hello" {
		t.Errorf("Expected message hello, got %v", sink.messages)
	}
	if len(sink.errs) != 1 || sink.errs[0] != "boom" {
		t.Errorf("Expected error boom, got %v", sink.errs)
	}
}

func TestUnknownTypeIgnoredWithoutError(t *testing.T) {
	sink := &recordingSink{}
	r := NewRouter([]string{trusted}, sink)

	_, forward, err := r.HandleEvent(trusted, "w1", []byte(`{"type":"chatbot-future-thing"}`))
	if err != nil {
		t.Fatalf("Expected unknown type to be ignored, got %v", err)
	}
	if forward {
		t.Error("Expected unknown type not to be forwarded")
	}
	if sink.total() != 0 {
		t.Errorf("Expected no sink calls, got %d", sink.total())
	}
}

func TestMalformedPayloadIgnored(t *testing.T) {
	r := NewRouter([]string{trusted}, &recordingSink{})
	if _, forward, err := r.HandleEvent(trusted, "w1", []byte(`not json`)); err != nil || forward {
		t.Errorf("Expected malformed payload ignored, got forward %v err %v", forward, err)
	}
}

func TestResizeHeightClamped(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{300, 300},
		{600, 600},
		{4000, 600},
		{0, 600},
		{-50, 600},
	}
	for _, tt := range tests {
		sink := &recordingSink{}
		r := NewRouter([]string{trusted}, sink)
		msg, _, err := r.HandleEvent(trusted, "w1", []byte(fmt.Sprintf(`{"type":"chatbot-resize","height":%d}`, tt.in)))
		if err != nil {
			t.Fatal(err)
		}
		if msg.Height != tt.want || sink.heights[0] != tt.want {
			t.Errorf("Resize %d: got %d, want %d", tt.in, msg.Height, tt.want)
		}
	}
}

func TestCommandsForwardedAndUnknownDropped(t *testing.T) {
	r := NewRouter([]string{trusted}, nil)

	for _, c := range []string{"show-widget", "minimize-widget", "send-message", "focus-input"} {
		if _, forward, err := r.HandleCommand(trusted, []byte(`{"type":"`+c+`"}`)); err != nil || !forward {
			t.Errorf("Command %s: forward %v, err %v", c, forward, err)
		}
	}
	if _, forward, _ := r.HandleCommand(trusted, []byte(`{"type":"drop-tables"}`)); forward {
		t.Error("Expected unknown command dropped")
	}
	if _, _, err := r.HandleCommand("https://evil.example.com", []byte(`{"type":"show-widget"}`)); !errors.Is(err, ErrOriginRejected) {
		t.Errorf("Expected rejected command origin, got %v", err)
	}
}

