package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatbotku/embedkit/internal/backend"
)

// tokenCookie is where the dashboard pages keep the bearer token.
const tokenCookie = "token"

// RegisterDashboardRoutes mounts the authenticated dashboard proxy. Every
// route forwards to the backend with the caller's bearer token.
func (h *Handler) RegisterDashboardRoutes(r chi.Router) {
	r.Route("/my", func(r chi.Router) {
		r.Get("/status", h.handleMyStatus)
		r.Get("/documents", h.handleDocuments)
		r.Post("/upload-pdf", h.handleUploadPDF)
		r.Delete("/documents/{documentID}", h.handleDeleteDocument)
		r.Delete("/clear-all", h.handleClearAll)
		r.Post("/ask", h.handleAsk)
	})
}

// bearerToken extracts the token from the Authorization header, falling back
// to the session cookie set by the login page.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// unauthorized clears the stale token and either bounces a browser to the
// login page or answers an API caller with plain 401 JSON.
func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, h.cfg.LoginURL, http.StatusSeeOther)
		return
	}
	Error(w, http.StatusUnauthorized, "session expired, please log in again")
}

// proxyError maps a backend failure onto the response, handling the 401 path.
func (h *Handler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		h.unauthorized(w, r)
		return
	}
	slog.Error("Dashboard proxy failed", "path", r.URL.Path, "error", err)
	Error(w, http.StatusBadGateway, "backend unavailable")
}

func (h *Handler) handleMyStatus(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}
	status, err := h.client.MyStatus(r.Context(), token)
	if err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, status)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}
	docs, err := h.client.Documents(r.Context(), token)
	if err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (h *Handler) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		Error(w, http.StatusBadRequest, "only PDF files are accepted")
		return
	}

	if err := h.client.UploadPDF(r.Context(), token, header.Filename, file); err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "uploaded", "filename": header.Filename})
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}
	documentID := chi.URLParam(r, "documentID")
	if err := h.client.DeleteDocument(r.Context(), token, documentID); err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleClearAll(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}
	if err := h.client.ClearAll(r.Context(), token); err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.unauthorized(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "malformed form")
		return
	}
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.client.Ask(r.Context(), token, question)
	if err != nil {
		h.proxyError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "success", "answer": answer})
}
