package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/chatbotku/embedkit/internal/domain"
)

// ErrAlreadyInitialized is returned when a second session is created for a
// key that already has a live one.
var ErrAlreadyInitialized = errors.New("widget: already initialized")

// Registry guards against double initialization: at most one live session per
// widget key, checked explicitly instead of through a global flag.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create constructs and registers a session under key.
func (r *Registry) Create(ctx context.Context, key string, cfg domain.WidgetConfig, variant Variant, deps Deps) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[key]; exists {
		return nil, ErrAlreadyInitialized
	}

	s, err := NewSession(ctx, cfg, variant, deps)
	if err != nil {
		return nil, err
	}
	r.sessions[key] = s
	return s, nil
}

// Get returns the live session for key, or nil.
func (r *Registry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[key]
}

// Remove drops the session for key.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}
