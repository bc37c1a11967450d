// Package api provides HTTP handlers for the embed host server.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/chatbotku/embedkit/internal/backend"
	"github.com/chatbotku/embedkit/internal/config"
	"github.com/chatbotku/embedkit/internal/store"
	"github.com/chatbotku/embedkit/internal/widget"
)

// Handler provides common handler utilities.
type Handler struct {
	client   *backend.Client
	registry *widget.Registry
	repo     store.Store
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(client *backend.Client, registry *widget.Registry, repo store.Store, cfg *config.Config) *Handler {
	return &Handler{
		client:   client,
		registry: registry,
		repo:     repo,
		cfg:      cfg,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
