// Package backend is the HTTP client for the external chatbot API. The
// backend owns all actual intelligence (user lookup, document ingestion,
// answer generation); this client is transport glue with typed failures.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatbotku/embedkit/internal/domain"
	"github.com/chatbotku/embedkit/internal/retry"
)

// ErrUnauthorized is returned for 401 responses on the bearer-authenticated
// dashboard endpoints. Callers clear stored credentials when they see it.
var ErrUnauthorized = errors.New("backend: unauthorized")

// ErrUserNotFound is returned by UserStatus for unregistered users.
var ErrUserNotFound = errors.New("backend: user not found")

// Client talks to the external chatbot backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client for the given base URL. The http.Client carries no
// global timeout; per-attempt deadlines come from the caller's context.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

// chatReply is the wire shape of a chat answer.
type chatReply struct {
	Status  string `json:"status"`
	Answer  string `json:"answer"`
	Message string `json:"message"`
}

// UserStatus performs the pre-flight user lookup.
func (c *Client) UserStatus(ctx context.Context, userID string) (*domain.UserStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/embed/user/%s/status", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode)
	}

	var status domain.UserStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode user status: %w", err)
	}
	return &status, nil
}

// SendChat performs a single chat attempt: a multipart form with the question
// field, answered with {status, answer, message}. Retry policy lives with the
// caller so attempt progress can be surfaced to the user.
func (c *Client) SendChat(ctx context.Context, userID, question string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("question", question); err != nil {
		return "", fmt.Errorf("encode question: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/embed/chat/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", httpError(resp.StatusCode)
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", retry.Fail(retry.KindInvalid, fmt.Errorf("decode chat reply: %w", err))
	}
	if reply.Status == "error" {
		msg := reply.Message
		if msg == "" {
			msg = "server error occurred"
		}
		return "", retry.Fail(retry.KindServer, errors.New(msg))
	}
	// A one-character answer is treated as a malformed reply, same as no
	// answer at all.
	if len(reply.Answer) < 2 {
		return "", retry.Fail(retry.KindInvalid, errors.New("invalid response received"))
	}

	return reply.Answer, nil
}

// MyStatus fetches the dashboard account summary.
func (c *Client) MyStatus(ctx context.Context, token string) (*domain.AccountStatus, error) {
	var status domain.AccountStatus
	if err := c.getJSON(ctx, token, "/my/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Documents lists the uploaded documents feeding the user's chatbot.
func (c *Client) Documents(ctx context.Context, token string) ([]domain.Document, error) {
	var payload struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := c.getJSON(ctx, token, "/my/documents", &payload); err != nil {
		return nil, err
	}
	return payload.Documents, nil
}

// UploadPDF streams a PDF to the ingestion endpoint as a multipart form.
func (c *Client) UploadPDF(ctx context.Context, token, filename string, content io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/my/upload-pdf", &body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.doAuthed(req, token, nil)
}

// DeleteDocument removes one uploaded document.
func (c *Client) DeleteDocument(ctx context.Context, token, documentID string) error {
	endpoint := fmt.Sprintf("%s/my/documents/%s", c.baseURL, url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	return c.doAuthed(req, token, nil)
}

// ClearAll removes every uploaded document for the account.
func (c *Client) ClearAll(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/my/clear-all", nil)
	if err != nil {
		return fmt.Errorf("build clear-all request: %w", err)
	}
	return c.doAuthed(req, token, nil)
}

// Ask sends a dashboard test question as a url-encoded form.
func (c *Client) Ask(ctx context.Context, token, question string) (string, error) {
	form := url.Values{"question": {question}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/my/ask",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var reply chatReply
	if err := c.doAuthed(req, token, &reply); err != nil {
		return "", err
	}
	return reply.Answer, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	return c.doAuthed(req, token, out)
}

// doAuthed runs a bearer-authenticated request and decodes a JSON body into
// out when out is non-nil. A 401 maps to ErrUnauthorized.
func (c *Client) doAuthed(req *http.Request, token string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// httpError classifies a non-2xx status: 5xx is a server failure, anything
// else stays generic.
func httpError(status int) error {
	err := fmt.Errorf("HTTP %d: %s", status, http.StatusText(status))
	if status >= 500 {
		return retry.Fail(retry.KindServer, err)
	}
	return err
}
