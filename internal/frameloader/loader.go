// Package frameloader drives the widget frame's load lifecycle: building the
// frame URL from the widget configuration, bounding each load with a timeout,
// and capping automatic retries so a dead frame endpoint cannot loop forever.
package frameloader

import (
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/chatbotku/embedkit/internal/domain"
	"github.com/chatbotku/embedkit/internal/metrics"
)

const (
	// loadTimeout bounds one load attempt.
	loadTimeout = 10 * time.Second
	// maxAttempts is the cumulative failed-load budget before the loader
	// refuses to start another attempt on its own.
	maxAttempts = 4
)

// ErrTooManyAttempts is returned by Load once the failure budget is spent.
// A manual Retry resets the budget.
var ErrTooManyAttempts = errors.New("frameloader: load attempt budget exhausted")

// State is the frame lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "unloaded"
	}
}

// Notifier receives loader lifecycle callbacks.
type Notifier interface {
	// LoadStarted fires when a load attempt begins, with the frame URL.
	LoadStarted(frameURL string)
	// LoadFailed fires when an attempt times out, with the failure count.
	LoadFailed(attempts int)
	// GaveUp fires once the budget is spent and no more automatic
	// attempts will run.
	GaveUp()
}

// NopNotifier discards all callbacks.
type NopNotifier struct{}

func (NopNotifier) LoadStarted(string) {}
func (NopNotifier) LoadFailed(int)     {}
func (NopNotifier) GaveUp()            {}

// Loader manages one widget frame. Load attempts that do not see OnLoaded
// within the timeout are counted as failures.
type Loader struct {
	baseURL  string
	cfg      domain.WidgetConfig
	notifier Notifier
	timeout  time.Duration

	mu         sync.Mutex
	state      State
	failures   int
	generation int
	timer      *time.Timer
}

// New creates a loader for the frame endpoint at baseURL.
func New(baseURL string, cfg domain.WidgetConfig, notifier Notifier) *Loader {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Loader{
		baseURL:  baseURL,
		cfg:      cfg,
		notifier: notifier,
		timeout:  loadTimeout,
	}
}

// BuildURL renders the frame URL with the widget configuration encoded as
// query parameters. Only set fields are included.
func (l *Loader) BuildURL() (string, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("userId", l.cfg.UserID)
	setIfPresent(q, "title", l.cfg.Title)
	setIfPresent(q, "subtitle", l.cfg.Subtitle)
	setIfPresent(q, "welcomeMessage", l.cfg.WelcomeMessage)
	setIfPresent(q, "placeholder", l.cfg.PlaceholderText)
	setIfPresent(q, "primaryColor", l.cfg.PrimaryColor)
	setIfPresent(q, "secondaryColor", l.cfg.SecondaryColor)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Load starts a load attempt. It refuses once the cumulative failure budget
// is spent, and is a no-op while an attempt is already in flight.
func (l *Loader) Load() error {
	l.mu.Lock()
	if l.state == StateLoading {
		l.mu.Unlock()
		return nil
	}
	if l.failures >= maxAttempts {
		l.mu.Unlock()
		return ErrTooManyAttempts
	}

	l.state = StateLoading
	l.generation++
	gen := l.generation
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.timeout, func() { l.onTimeout(gen) })
	l.mu.Unlock()

	frameURL, err := l.BuildURL()
	if err != nil {
		l.mu.Lock()
		l.state = StateErrored
		if l.timer != nil {
			l.timer.Stop()
		}
		l.mu.Unlock()
		return err
	}

	slog.Info("Frame load started", "url", frameURL)
	l.notifier.LoadStarted(frameURL)
	return nil
}

// OnLoaded marks the current attempt successful and resets the failure
// counter. Stale signals from a superseded attempt are ignored.
func (l *Loader) OnLoaded() {
	l.mu.Lock()
	if l.state != StateLoading {
		l.mu.Unlock()
		return
	}
	l.state = StateLoaded
	l.failures = 0
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.mu.Unlock()

	slog.Info("Frame loaded")
}

// onTimeout fires when an attempt's deadline expires. The generation guard
// drops timers from attempts that were already superseded or completed.
func (l *Loader) onTimeout(gen int) {
	l.mu.Lock()
	if gen != l.generation || l.state != StateLoading {
		l.mu.Unlock()
		return
	}
	l.state = StateErrored
	l.failures++
	failures := l.failures
	l.mu.Unlock()

	slog.Warn("Frame load timed out", "failures", failures)
	metrics.FrameLoadFailuresTotal.Inc()
	l.notifier.LoadFailed(failures)

	if failures >= maxAttempts {
		l.notifier.GaveUp()
		return
	}
	if err := l.Load(); err != nil {
		slog.Warn("Frame reload failed", "error", err)
	}
}

// Retry is the manual recovery path: it clears the failure budget and starts
// a fresh attempt.
func (l *Loader) Retry() error {
	l.mu.Lock()
	l.failures = 0
	l.state = StateUnloaded
	l.mu.Unlock()
	return l.Load()
}

// Reload forces a fresh attempt, clearing the failure budget like Retry.
func (l *Loader) Reload() error {
	l.mu.Lock()
	if l.state == StateLoading {
		l.generation++ // invalidate the in-flight timer
	}
	l.state = StateUnloaded
	l.failures = 0
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.mu.Unlock()
	return l.Load()
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Failures returns the cumulative failed-attempt count.
func (l *Loader) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}
