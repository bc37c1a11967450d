package domain

import (
	"errors"
	"time"
)

// ErrMissingUserID is returned when a widget is constructed without the
// required user identifier. Initialization must abort with no side effects.
var ErrMissingUserID = errors.New("widget: user id is required")

// WidgetConfig is the immutable per-instance widget configuration. UserID is
// sourced from the host markup and is the only required field.
type WidgetConfig struct {
	UserID          string
	Title           string
	Subtitle        string
	WelcomeMessage  string
	PlaceholderText string
	PrimaryColor    string
	SecondaryColor  string

	AutoOpen      bool
	RememberState bool
	RetryAttempts int
	RetryDelay    time.Duration
}

// Validate checks the required fields.
func (c *WidgetConfig) Validate() error {
	if c.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// UserInfo carries the display name returned by the user status endpoint.
type UserInfo struct {
	Name string `json:"name"`
}

// UserStatus is the backend's answer to the pre-flight user lookup.
type UserStatus struct {
	Status            string   `json:"status"`
	FullyPersonalized bool     `json:"fully_personalized"`
	ChatbotReady      bool     `json:"chatbot_ready"`
	User              UserInfo `json:"user"`
}

// UserNotFound reports whether the status marks an unregistered user.
func (s *UserStatus) UserNotFound() bool {
	return s.Status == "user_not_found"
}

// Document is one uploaded file as listed by the dashboard API.
type Document struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt string `json:"uploaded_at"`
}

// AccountStatus is the dashboard account summary.
type AccountStatus struct {
	Status            string `json:"status"`
	DocumentCount     int    `json:"document_count"`
	FullyPersonalized bool   `json:"fully_personalized"`
	ChatbotReady      bool   `json:"chatbot_ready"`
}
