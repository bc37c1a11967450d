package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.BackendURL != "http://localhost:8058" {
		t.Errorf("Unexpected default backend URL %q", cfg.BackendURL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.Widget.RetryAttempts != 3 || cfg.Widget.RetryDelay != time.Second {
		t.Errorf("Unexpected retry defaults: %d/%v", cfg.Widget.RetryAttempts, cfg.Widget.RetryDelay)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("WIDGET_AUTO_OPEN", "true")
	t.Setenv("WIDGET_RETRY_ATTEMPTS", "5")
	t.Setenv("WIDGET_RETRY_DELAY_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("Expected trimmed origin list, got %v", cfg.AllowedOrigins)
	}
	if !cfg.Widget.AutoOpen {
		t.Error("Expected auto-open enabled")
	}
	if cfg.Widget.RetryAttempts != 5 || cfg.Widget.RetryDelay != 250*time.Millisecond {
		t.Errorf("Unexpected retry settings: %d/%v", cfg.Widget.RetryAttempts, cfg.Widget.RetryDelay)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty port", map[string]string{"PORT": ""}},
		{"empty backend", map[string]string{"BACKEND_URL": ""}},
		{"zero attempts", map[string]string{"WIDGET_RETRY_ATTEMPTS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{WidgetBaseURL: ""}
	if !cfg.IsDevelopment() {
		t.Error("Expected empty base URL to mean development")
	}
	cfg.WidgetBaseURL = "http://localhost:8080"
	if !cfg.IsDevelopment() {
		t.Error("Expected localhost to mean development")
	}
	cfg.WidgetBaseURL = "https://widget.example.com"
	if cfg.IsDevelopment() {
		t.Error("Expected public URL to mean production")
	}
}
