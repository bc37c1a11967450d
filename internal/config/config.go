// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	BackendURL     string // chat/RAG backend the widget talks to
	WidgetBaseURL  string // public URL the frame variant is served from
	LoginURL       string // where an expired dashboard session is sent
	DBPath         string
	AllowedOrigins []string
	Widget         WidgetDefaults
}

// WidgetDefaults are the server-side defaults applied when the embedding
// page does not override a field.
type WidgetDefaults struct {
	Title           string
	Subtitle        string
	WelcomeMessage  string
	PlaceholderText string
	PrimaryColor    string
	SecondaryColor  string
	AutoOpen        bool
	RememberState   bool
	RetryAttempts   int
	RetryDelay      time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	retryDelay := time.Duration(getEnvInt("WIDGET_RETRY_DELAY_MS", 1000)) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8058"),
		WidgetBaseURL:  getEnv("WIDGET_BASE_URL", ""),
		LoginURL:       getEnv("LOGIN_URL", "/login.html"),
		DBPath:         getEnv("DB_PATH", "./data/embedkit.db"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		Widget: WidgetDefaults{
			Title:           getEnv("WIDGET_TITLE", "Customer Support"),
			Subtitle:        getEnv("WIDGET_SUBTITLE", "Kami siap membantu Anda"),
			WelcomeMessage:  getEnv("WIDGET_WELCOME_MESSAGE", ""),
			PlaceholderText: getEnv("WIDGET_PLACEHOLDER", "Ketik pesan Anda..."),
			PrimaryColor:    getEnv("WIDGET_PRIMARY_COLOR", "#667eea"),
			SecondaryColor:  getEnv("WIDGET_SECONDARY_COLOR", "#764ba2"),
			AutoOpen:        getEnvBool("WIDGET_AUTO_OPEN", false),
			RememberState:   getEnvBool("WIDGET_REMEMBER_STATE", true),
			RetryAttempts:   getEnvInt("WIDGET_RETRY_ATTEMPTS", 3),
			RetryDelay:      retryDelay,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	if _, err := url.Parse(c.BackendURL); err != nil {
		return fmt.Errorf("BACKEND_URL is not a valid URL: %w", err)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS cannot be empty")
	}
	if c.Widget.RetryAttempts < 1 {
		return fmt.Errorf("WIDGET_RETRY_ATTEMPTS must be >= 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.WidgetBaseURL == "" ||
		strings.Contains(c.WidgetBaseURL, "localhost") ||
		strings.Contains(c.WidgetBaseURL, "127.0.0.1")
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
