package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatbotku/embedkit/internal/domain"
	"github.com/chatbotku/embedkit/internal/widget"
)

// widgetConfigResponse is the resolved configuration handed to a frame.
type widgetConfigResponse struct {
	UserID          string `json:"userId"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	WelcomeMessage  string `json:"welcomeMessage,omitempty"`
	PlaceholderText string `json:"placeholder"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	AutoOpen        bool   `json:"autoOpen"`
	RememberState   bool   `json:"rememberState"`
}

// RegisterWidgetRoutes mounts the embed endpoints the widget frame uses.
func (h *Handler) RegisterWidgetRoutes(r chi.Router) {
	r.Get("/embed/config/{userID}", h.handleWidgetConfig)
	r.Get("/embed/user/{userID}/status", h.handleUserStatus)
	r.Post("/embed/chat/{userID}", h.handleChat)
}

// handleWidgetConfig resolves the widget configuration for a user: the
// server-side defaults, overridable per request via query parameters.
func (h *Handler) handleWidgetConfig(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		Error(w, http.StatusBadRequest, "user id is required")
		return
	}

	cfg := h.resolveConfig(userID, r)
	JSON(w, http.StatusOK, widgetConfigResponse{
		UserID:          cfg.UserID,
		Title:           cfg.Title,
		Subtitle:        cfg.Subtitle,
		WelcomeMessage:  cfg.WelcomeMessage,
		PlaceholderText: cfg.PlaceholderText,
		PrimaryColor:    cfg.PrimaryColor,
		SecondaryColor:  cfg.SecondaryColor,
		AutoOpen:        cfg.AutoOpen,
		RememberState:   cfg.RememberState,
	})
}

// resolveConfig merges server defaults with per-request query overrides.
func (h *Handler) resolveConfig(userID string, r *http.Request) domain.WidgetConfig {
	d := h.cfg.Widget
	cfg := domain.WidgetConfig{
		UserID:          userID,
		Title:           d.Title,
		Subtitle:        d.Subtitle,
		WelcomeMessage:  d.WelcomeMessage,
		PlaceholderText: d.PlaceholderText,
		PrimaryColor:    d.PrimaryColor,
		SecondaryColor:  d.SecondaryColor,
		AutoOpen:        d.AutoOpen,
		RememberState:   d.RememberState,
		RetryAttempts:   d.RetryAttempts,
		RetryDelay:      d.RetryDelay,
	}

	q := r.URL.Query()
	override := func(dst *string, key string) {
		if v := q.Get(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Title, "title")
	override(&cfg.Subtitle, "subtitle")
	override(&cfg.WelcomeMessage, "welcomeMessage")
	override(&cfg.PlaceholderText, "placeholder")
	override(&cfg.PrimaryColor, "primaryColor")
	override(&cfg.SecondaryColor, "secondaryColor")
	return cfg
}

// handleUserStatus proxies the pre-flight user lookup so the frame never
// talks to the backend origin directly.
func (h *Handler) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	status, err := h.client.UserStatus(r.Context(), userID)
	if err != nil {
		slog.Warn("User status proxy failed", "user_id", userID, "error", err)
		Error(w, http.StatusBadGateway, "user status unavailable")
		return
	}
	JSON(w, http.StatusOK, status)
}

// handleChat feeds a question through the user's widget session: the retried
// send, attempt progress, and message log all run server-side.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		Error(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			Error(w, http.StatusBadRequest, "malformed form")
			return
		}
	}
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		Error(w, http.StatusBadRequest, "question is required")
		return
	}

	session, err := h.sessionFor(r, userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to initialize widget")
		return
	}

	if err := session.SendMessage(r.Context(), question); err != nil {
		if errors.Is(err, widget.ErrSendInFlight) {
			Error(w, http.StatusTooManyRequests, "a message is already being sent")
			return
		}
		// The session appended a localized error bubble; surface it.
		msgs := session.Messages()
		JSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"message": msgs[len(msgs)-1].Text,
		})
		return
	}

	msgs := session.Messages()
	JSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"answer": msgs[len(msgs)-1].Text,
	})
}

// sessionFor returns the live session for userID, creating one on first use.
func (h *Handler) sessionFor(r *http.Request, userID string) (*widget.Session, error) {
	if s := h.registry.Get(userID); s != nil {
		return s, nil
	}

	cfg := h.resolveConfig(userID, r)
	s, err := h.registry.Create(r.Context(), userID, cfg, widget.VariantIframe, widget.Deps{
		Store:   h.repo,
		Backend: h.client,
	})
	if errors.Is(err, widget.ErrAlreadyInitialized) {
		return h.registry.Get(userID), nil
	}
	return s, err
}
