package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryCache is an in-memory Cache for tests and single-process setups.
type MemoryCache struct {
	mu       sync.Mutex
	sessions map[string][]Message
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string][]Message)}
}

// Get returns the transcript for a session, oldest first.
func (c *MemoryCache) Get(ctx context.Context, sessionID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := c.sessions[sessionID]
	out := make([]Message, len(stored))
	copy(out, stored)
	return out, nil
}

// Put appends messages to a session's transcript.
func (c *MemoryCache) Put(ctx context.Context, sessionID string, messages ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[sessionID] = append(c.sessions[sessionID], messages...)
	return nil
}

// Clear drops a session's transcript.
func (c *MemoryCache) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
	return nil
}

var _ Cache = (*MemoryCache)(nil)
