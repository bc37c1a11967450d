// Package store persists widget UI state across page loads.
package store

import "context"

// Well-known state key prefixes. The plain and iframe widget variants use
// distinct prefixes so both can coexist; sessions suffix them with the user
// ID since one store serves every user.
const (
	KeyWidgetOpen = "chatbot-open"
	KeyIframeOpen = "chatbot-iframe-open"
)

// Store is the durable per-origin key-value store backing "remember state".
// Writes are fire-and-forget from the widget's point of view, last-write-wins.
type Store interface {
	// GetOpenState returns the persisted open/closed flag for key.
	// ok is false when no value has ever been stored.
	GetOpenState(ctx context.Context, key string) (open bool, ok bool, err error)

	// SetOpenState persists the open/closed flag for key.
	SetOpenState(ctx context.Context, key string, open bool) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
