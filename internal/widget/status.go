package widget

import (
	"sync"
	"time"
)

// hideDebounce keeps a fast success visible long enough to be perceived.
const hideDebounce = time.Second

// StatusReporter tracks the binary connected indicator and the transient
// progress line shown during a send attempt. Level-triggered, no queue; the
// most recent call wins.
type StatusReporter struct {
	mu        sync.Mutex
	presenter Presenter
	hideDelay time.Duration
	hideTimer *time.Timer
	connected bool
}

// NewStatusReporter creates a reporter delivering to p. The widget starts
// out assumed connected.
func NewStatusReporter(p Presenter) *StatusReporter {
	return &StatusReporter{
		presenter: p,
		hideDelay: hideDebounce,
		connected: true,
	}
}

// SetConnected flips the connected indicator.
func (r *StatusReporter) SetConnected(connected bool) {
	r.mu.Lock()
	r.connected = connected
	r.mu.Unlock()
	r.presenter.ConnectionChanged(connected)
}

// Connected returns the last reported connectivity.
func (r *StatusReporter) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// ShowTransient makes the status line visible immediately, cancelling any
// pending hide.
func (r *StatusReporter) ShowTransient(text string) {
	r.mu.Lock()
	if r.hideTimer != nil {
		r.hideTimer.Stop()
		r.hideTimer = nil
	}
	r.mu.Unlock()
	r.presenter.StatusShown(text)
}

// Hide removes the status line after the debounce delay.
func (r *StatusReporter) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideTimer != nil {
		r.hideTimer.Stop()
	}
	r.hideTimer = time.AfterFunc(r.hideDelay, r.presenter.StatusHidden)
}
