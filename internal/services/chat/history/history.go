// Package history defines the pluggable cache for chat session transcripts.
package history

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat session.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache stores session transcripts. Implementations are caches, not
// records: the server's copy wins whenever the two disagree, and a cleared
// session simply reads as empty.
type Cache interface {
	// Get returns the transcript for a session, oldest first. An unknown
	// session reads as an empty transcript.
	Get(ctx context.Context, sessionID string) ([]Message, error)
	// Put appends messages to a session's transcript.
	Put(ctx context.Context, sessionID string, messages ...Message) error
	// Clear drops a session's transcript.
	Clear(ctx context.Context, sessionID string) error
}
