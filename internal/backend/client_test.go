package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chatbotku/embedkit/internal/retry"
)

func TestSendChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/chat/u1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}
		if got := r.FormValue("question"); got != "hello" {
			t.Errorf("Expected question=hello, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"status":"ok","answer":"Hi!"}`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	answer, err := c.SendChat(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("SendChat failed: %v", err)
	}
	if answer != "Hi!" {
		t.Errorf("Expected answer Hi!, got %q", answer)
	}
}

func TestSendChatClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   retry.Kind
	}{
		{"server error status", http.StatusInternalServerError, "", retry.KindServer},
		{"error envelope", http.StatusOK, `{"status":"error","message":"model down"}`, retry.KindServer},
		{"short answer", http.StatusOK, `{"status":"ok","answer":"x"}`, retry.KindInvalid},
		{"garbage body", http.StatusOK, `{{{`, retry.KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Fatal(err)
				}
			}))
			defer srv.Close()

			_, err := New(srv.URL).SendChat(context.Background(), "u1", "hello")
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := retry.KindOf(err); got != tt.kind {
				t.Errorf("Expected kind %v, got %v (err=%v)", tt.kind, got, err)
			}
		})
	}
}

func TestUserStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/user/u1/status" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"limited_ready","fully_personalized":false,"chatbot_ready":false,"user":{"name":"Budi"}}`))
	}))
	defer srv.Close()

	status, err := New(srv.URL).UserStatus(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserStatus failed: %v", err)
	}
	if status.User.Name != "Budi" || status.Status != "limited_ready" {
		t.Errorf("Unexpected status %+v", status)
	}
	if status.UserNotFound() {
		t.Error("Expected UserNotFound to be false")
	}
}

func TestDashboardUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.MyStatus(context.Background(), "stale-token"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if err := c.ClearAll(context.Background(), "stale-token"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestDashboardOperations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/my/documents":
			_, _ = w.Write([]byte(`{"documents":[{"id":"d1","filename":"faq.pdf"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/my/upload-pdf":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("Expected multipart upload: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete && r.URL.Path == "/my/documents/d1":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/my/ask":
			if got := r.PostFormValue("question"); got != "ping" {
				t.Errorf("Expected url-encoded question, got %q", got)
			}
			_, _ = w.Write([]byte(`{"status":"ok","answer":"pong"}`))
		default:
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	docs, err := c.Documents(ctx, "tok")
	if err != nil || len(docs) != 1 || docs[0].Filename != "faq.pdf" {
		t.Errorf("Documents = %v, %v", docs, err)
	}
	if err := c.UploadPDF(ctx, "tok", "faq.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Errorf("UploadPDF failed: %v", err)
	}
	if err := c.DeleteDocument(ctx, "tok", "d1"); err != nil {
		t.Errorf("DeleteDocument failed: %v", err)
	}
	if answer, err := c.Ask(ctx, "tok", "ping"); err != nil || answer != "pong" {
		t.Errorf("Ask = %q, %v", answer, err)
	}
}
