// Package widget implements the support-chat widget state machine: the
// open/closed toggle, the unread badge, the in-memory message log, and the
// retried send path to the backend.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatbotku/embedkit/internal/domain"
	"github.com/chatbotku/embedkit/internal/langdetect"
	"github.com/chatbotku/embedkit/internal/metrics"
	"github.com/chatbotku/embedkit/internal/retry"
	"github.com/chatbotku/embedkit/internal/store"
)

const (
	// focusDelay lets the open transition finish before focus moves.
	focusDelay = 300 * time.Millisecond
	// autoOpenDelay is the wait before an auto-opening widget opens itself.
	autoOpenDelay = 2 * time.Second
	// bannerTTL auto-expires the user-not-found banner.
	bannerTTL = 15 * time.Second
	// sendTimeout bounds a single chat send attempt.
	sendTimeout = 15 * time.Second
	// badgeCap is the largest count rendered verbatim on the badge.
	badgeCap = 99
)

// ErrSendInFlight is returned when a send starts while another is running.
var ErrSendInFlight = errors.New("widget: send already in flight")

// ErrUserNotFound is returned by CheckUserStatus for unregistered users;
// the widget must not be shown.
var ErrUserNotFound = errors.New("widget: user not registered")

// Variant distinguishes the plain embedded widget from the iframe deployment.
// Each variant persists its open state under its own key.
type Variant string

const (
	VariantEmbedded Variant = "embedded"
	VariantIframe   Variant = "iframe"
)

// stateKey scopes the persisted open flag to the variant and the user. The
// server shares one store across every session, so without the user suffix
// one user's state would leak into everyone else's.
func (v Variant) stateKey(userID string) string {
	base := store.KeyWidgetOpen
	if v == VariantIframe {
		base = store.KeyIframeOpen
	}
	return base + ":" + userID
}

// ChatBackend is the slice of the backend API a session needs.
type ChatBackend interface {
	UserStatus(ctx context.Context, userID string) (*domain.UserStatus, error)
	SendChat(ctx context.Context, userID, question string) (string, error)
}

// Deps carries a session's collaborators. Store and Telemetry are optional.
type Deps struct {
	Store     store.Store
	Backend   ChatBackend
	Presenter Presenter
	Telemetry TelemetrySink
}

// Session is one live widget instance. All mutable state lives here; the
// presenter is a pure projection of it.
type Session struct {
	cfg     domain.WidgetConfig
	variant Variant

	backend   ChatBackend
	stateStr  store.Store
	presenter Presenter
	telemetry TelemetrySink
	status    *StatusReporter
	policy    retry.Policy

	focusDelay    time.Duration
	autoOpenDelay time.Duration
	bannerTTL     time.Duration

	mu       sync.Mutex
	open     bool
	unread   int
	sending  bool
	messages []domain.Message
}

// NewSession constructs a widget session. An empty user ID aborts with
// domain.ErrMissingUserID before any side effect. When remember-state is
// enabled a persisted "open" restores the widget into the open state.
func NewSession(ctx context.Context, cfg domain.WidgetConfig, variant Variant, deps Deps) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Backend == nil {
		return nil, errors.New("widget: backend is required")
	}

	presenter := deps.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}

	policy := retry.Policy{
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
		Timeout:  sendTimeout,
	}
	if policy.Attempts < 1 {
		policy.Attempts = 3
	}
	if policy.Delay <= 0 {
		policy.Delay = time.Second
	}

	s := &Session{
		cfg:           cfg,
		variant:       variant,
		backend:       deps.Backend,
		stateStr:      deps.Store,
		presenter:     presenter,
		telemetry:     deps.Telemetry,
		status:        NewStatusReporter(presenter),
		policy:        policy,
		focusDelay:    focusDelay,
		autoOpenDelay: autoOpenDelay,
		bannerTTL:     bannerTTL,
	}

	// The welcome bubble is the first entry of the log; ClearChat keeps it.
	welcome := cfg.WelcomeMessage
	if welcome == "" {
		welcome = defaultWelcome
	}
	s.messages = append(s.messages, domain.Message{
		ID:        uuid.NewString(),
		Text:      welcome,
		Sender:    domain.RoleBot,
		CreatedAt: time.Now(),
	})

	if cfg.RememberState && s.stateStr != nil {
		open, ok, err := s.stateStr.GetOpenState(ctx, variant.stateKey(cfg.UserID))
		if err != nil {
			slog.Warn("Failed to read persisted widget state", "key", variant.stateKey(cfg.UserID), "error", err)
		} else if ok && open {
			s.setOpen(ctx, boolPtr(true))
		}
	}

	if cfg.AutoOpen && !s.IsOpen() {
		time.AfterFunc(s.autoOpenDelay, func() {
			s.setOpen(context.Background(), boolPtr(true))
		})
	}

	return s, nil
}

// CheckUserStatus runs the pre-flight user lookup. An unregistered user
// raises the dismissible banner and returns ErrUserNotFound; lookup failures
// are non-fatal and fall back to the default welcome.
func (s *Session) CheckUserStatus(ctx context.Context) error {
	status, err := s.backend.UserStatus(ctx, s.cfg.UserID)
	if err != nil {
		slog.Warn("User status check failed", "user_id", s.cfg.UserID, "error", err)
		s.UpdateWelcome(defaultWelcome)
		return nil
	}

	switch {
	case status.UserNotFound():
		banner := fmt.Sprintf("User %s belum terdaftar. Hubungi admin untuk registrasi atau cek user ID Anda.", s.cfg.UserID)
		s.presenter.BannerShown(banner)
		time.AfterFunc(s.bannerTTL, s.presenter.BannerDismissed)
		return ErrUserNotFound
	case status.Status == "limited_ready" || !status.FullyPersonalized:
		s.UpdateWelcome(fmt.Sprintf("Hai %s! 👋 Saya siap membantu dengan info e-commerce umum. Upload dokumen untuk jawaban yang lebih personal! 📄", status.User.Name))
	case status.ChatbotReady:
		s.UpdateWelcome(fmt.Sprintf("Hai %s! 👋 Saya siap membantu berdasarkan dokumen personal Anda.", status.User.Name))
	}
	return nil
}

// Toggle flips the open/closed state.
func (s *Session) Toggle(ctx context.Context) { s.setOpen(ctx, nil) }

// Open forces the widget open.
func (s *Session) Open(ctx context.Context) { s.setOpen(ctx, boolPtr(true)) }

// Close forces the widget closed.
func (s *Session) Close(ctx context.Context) { s.setOpen(ctx, boolPtr(false)) }

func (s *Session) setOpen(ctx context.Context, force *bool) {
	s.mu.Lock()
	open := !s.open
	if force != nil {
		open = *force
	}
	changedToOpen := open && !s.open
	s.open = open
	if open {
		s.unread = 0
	}
	s.mu.Unlock()

	s.presenter.OpenChanged(open)
	if changedToOpen {
		s.presenter.BadgeChanged("")
		time.AfterFunc(s.focusDelay, s.presenter.FocusInput)
	}

	if s.cfg.RememberState && s.stateStr != nil {
		// Fire-and-forget, last-write-wins.
		key := s.variant.stateKey(s.cfg.UserID)
		if err := s.stateStr.SetOpenState(ctx, key, open); err != nil {
			slog.Warn("Failed to persist widget state", "key", key, "error", err)
		}
	}
}

// SendMessage appends the user message and runs the retried send. Exactly one
// bot bubble is produced: the answer on success, a localized error bubble
// after the attempt budget is spent.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
		s.presenter.TypingChanged(false)
	}()

	s.appendMessage(text, domain.RoleUser, false)
	s.presenter.TypingChanged(true)

	var answer string
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		a, err := s.backend.SendChat(ctx, s.cfg.UserID, text)
		if err != nil {
			return err
		}
		answer = a
		return nil
	}, func(attempt, total int) {
		metrics.SendAttemptsTotal.Inc()
		s.status.ShowTransient(fmt.Sprintf("Sending... (%d/%d)", attempt, total))
	})
	s.status.Hide()

	if err != nil {
		kind := retry.KindOf(err)
		slog.Error("Chat send failed", "user_id", s.cfg.UserID, "kind", kind.String(), "error", err)
		metrics.SendsTotal.WithLabelValues("false").Inc()
		metrics.SendFailuresTotal.WithLabelValues(kind.String()).Inc()
		s.status.SetConnected(false)
		s.appendMessage(errorBubbleText(kind, langdetect.Detect(text)), domain.RoleBot, true)
		return err
	}

	metrics.SendsTotal.WithLabelValues("true").Inc()
	s.status.SetConnected(true)
	s.appendMessage(answer, domain.RoleBot, false)
	s.track(text, answer)
	return nil
}

// RetryLastMessage resends the most recent user message, if any.
func (s *Session) RetryLastMessage(ctx context.Context) error {
	s.mu.Lock()
	var last string
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Sender == domain.RoleUser {
			last = s.messages[i].Text
			break
		}
	}
	s.mu.Unlock()

	if last == "" {
		return nil
	}
	return s.SendMessage(ctx, last)
}

// AddBotMessage appends an out-of-band bot message (e.g. one pushed over the
// relay channel) with the usual unread accounting.
func (s *Session) AddBotMessage(text string) {
	s.appendMessage(text, domain.RoleBot, false)
}

// NotifyNewMessage records a new-message signal for a bot reply that already
// lives in the log, feeding the unread badge while the widget is closed.
// The frame raises this after rendering an answer; appending again here would
// duplicate the message, so only the counter moves.
func (s *Session) NotifyNewMessage() {
	s.mu.Lock()
	badge := ""
	notify := false
	if !s.open {
		s.unread++
		badge = badgeLabel(s.unread)
		notify = true
	}
	s.mu.Unlock()

	if notify {
		s.presenter.BadgeChanged(badge)
	}
}

func (s *Session) appendMessage(text string, sender domain.Role, isError bool) {
	msg := domain.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Error:     isError,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	badge := ""
	notify := false
	if sender == domain.RoleBot && !s.open {
		s.unread++
		badge = badgeLabel(s.unread)
		notify = true
	}
	s.mu.Unlock()

	s.presenter.MessageAppended(msg)
	if notify {
		s.presenter.BadgeChanged(badge)
	}
}

func badgeLabel(unread int) string {
	if unread > badgeCap {
		return "99+"
	}
	return strconv.Itoa(unread)
}

// ClearChat resets the log to the welcome message only.
func (s *Session) ClearChat() {
	s.mu.Lock()
	s.messages = s.messages[:1]
	s.unread = 0
	s.mu.Unlock()

	s.presenter.BadgeChanged("")
	s.presenter.ChatCleared()
}

// UpdateWelcome rewrites the welcome bubble in place.
func (s *Session) UpdateWelcome(text string) {
	s.mu.Lock()
	s.messages[0].Text = text
	s.mu.Unlock()
	s.presenter.WelcomeChanged(text)
}

// IsOpen reports the open/closed state.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsConnected reports the last known connectivity.
func (s *Session) IsConnected() bool { return s.status.Connected() }

// UserID returns the configured user identifier.
func (s *Session) UserID() string { return s.cfg.UserID }

// Unread returns the unread bot message count.
func (s *Session) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) track(question, answer string) {
	if s.telemetry == nil {
		return
	}
	s.telemetry.Track("chatbot_interaction", map[string]interface{}{
		"user_id":         s.cfg.UserID,
		"message_length":  len(question),
		"response_length": len(answer),
		"language":        string(langdetect.Detect(question)),
	})
}

func boolPtr(v bool) *bool { return &v }
