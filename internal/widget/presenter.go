package widget

import "github.com/chatbotku/embedkit/internal/domain"

// Presenter receives UI projection events from a session. The session's
// message log is the source of truth; a presenter only renders.
type Presenter interface {
	// OpenChanged fires on every open/closed transition.
	OpenChanged(open bool)
	// BadgeChanged carries the unread badge label; "" removes the badge.
	BadgeChanged(label string)
	// MessageAppended fires once per message, in log order.
	MessageAppended(msg domain.Message)
	// TypingChanged toggles the typing indicator while a send is in flight.
	TypingChanged(active bool)
	// StatusShown/StatusHidden drive the transient connection status line.
	StatusShown(text string)
	StatusHidden()
	// ConnectionChanged reports the binary connected indicator.
	ConnectionChanged(connected bool)
	// FocusInput asks the UI to move focus into the input field.
	FocusInput()
	// WelcomeChanged updates the welcome bubble text in place.
	WelcomeChanged(text string)
	// BannerShown/BannerDismissed drive the user-not-found banner.
	BannerShown(text string)
	BannerDismissed()
	// ChatCleared fires after the log is reset to the welcome message.
	ChatCleared()
}

// NopPresenter implements Presenter with no-ops. Embed it and override the
// events you care about.
type NopPresenter struct{}

func (NopPresenter) OpenChanged(bool)                  {}
func (NopPresenter) BadgeChanged(string)               {}
func (NopPresenter) MessageAppended(domain.Message)    {}
func (NopPresenter) TypingChanged(bool)                {}
func (NopPresenter) StatusShown(string)                {}
func (NopPresenter) StatusHidden()                     {}
func (NopPresenter) ConnectionChanged(bool)            {}
func (NopPresenter) FocusInput()                       {}
func (NopPresenter) WelcomeChanged(string)             {}
func (NopPresenter) BannerShown(string)                {}
func (NopPresenter) BannerDismissed()                  {}
func (NopPresenter) ChatCleared()                      {}

// TelemetrySink receives interaction events. It is an injected capability;
// when nil nothing is tracked.
type TelemetrySink interface {
	Track(event string, props map[string]interface{})
}
