// Package sqlite provides a SQLite-backed chat history cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/maisonhq/maison/internal/platform/storage/sqlitemigrate"
	"github.com/maisonhq/maison/internal/services/chat/history"
	"github.com/maisonhq/maison/internal/services/chat/history/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Cache persists chat transcripts in SQLite.
type Cache struct {
	sqlDB *sql.DB
}

// Open opens a SQLite history cache and applies embedded migrations.
func Open(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Cache{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (c *Cache) Close() error {
	if c == nil || c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

// Get returns the transcript for a session, oldest first.
func (c *Cache) Get(ctx context.Context, sessionID string) ([]history.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c == nil || c.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	rows, err := c.sqlDB.QueryContext(
		ctx,
		`SELECT role, content, created_at
		   FROM chat_messages
		  WHERE session_id = ?
		  ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	defer rows.Close()

	messages := make([]history.Message, 0)
	for rows.Next() {
		var message history.Message
		var createdAt int64
		if err := rows.Scan(&message.Role, &message.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("get chat history: %w", err)
		}
		message.CreatedAt = time.UnixMilli(createdAt).UTC()
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	return messages, nil
}

// Put appends messages to a session's transcript.
func (c *Cache) Put(ctx context.Context, sessionID string, messages ...history.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if len(messages) == 0 {
		return nil
	}

	tx, err := c.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, message := range messages {
		createdAt := message.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO chat_messages (session_id, role, content, created_at)
			 VALUES (?, ?, ?, ?)`,
			sessionID,
			message.Role,
			message.Content,
			createdAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("put chat message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

// Clear drops a session's transcript.
func (c *Cache) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if _, err := c.sqlDB.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

var _ history.Cache = (*Cache)(nil)
