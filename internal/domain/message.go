// Package domain defines the entities exchanged by the widget runtime.
package domain

import "time"

// Role identifies who produced a chat message.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// Message is a single chat line within a widget session. Messages form an
// append-only, page-lifetime sequence; the session log is the source of truth
// and any UI is a projection of it.
type Message struct {
	ID        string
	Text      string
	Sender    Role
	Error     bool
	CreatedAt time.Time
}
