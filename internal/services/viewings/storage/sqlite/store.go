// Package sqlite provides a SQLite-backed viewing availability store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/maisonhq/maison/internal/platform/storage/sqlitemigrate"
	"github.com/maisonhq/maison/internal/services/viewings/storage"
	"github.com/maisonhq/maison/internal/services/viewings/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists viewing availability in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite availability store and applies embedded migrations.
func Open(path string) (*Store, error) {
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
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateSlot inserts one availability slot after checking for overlaps.
func (s *Store) CreateSlot(ctx context.Context, slot storage.Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(slot.ID)
	propertyID := strings.TrimSpace(slot.PropertyID)
	sellerID := strings.TrimSpace(slot.SellerID)
	if id == "" {
		return fmt.Errorf("slot id is required")
	}
	if propertyID == "" {
		return fmt.Errorf("property id is required")
	}
	if sellerID == "" {
		return fmt.Errorf("seller id is required")
	}
	if !slot.End.After(slot.Start) {
		return fmt.Errorf("slot end must be after start")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create slot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var overlapping int
	err = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*)
		   FROM availability_slots
		  WHERE property_id = ? AND start_at < ? AND end_at > ?`,
		propertyID,
		toMillis(slot.End),
		toMillis(slot.Start),
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("check slot overlap: %w", err)
	}
	if overlapping > 0 {
		return storage.ErrOverlap
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO availability_slots (id, property_id, seller_id, start_at, end_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id,
		propertyID,
		sellerID,
		toMillis(slot.Start),
		toMillis(slot.End),
	); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create slot: %w", err)
	}
	return nil
}

// ListSlots returns all slots for a property ordered by start time.
func (s *Store) ListSlots(ctx context.Context, propertyID string) ([]storage.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, fmt.Errorf("property id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, property_id, seller_id, start_at, end_at
		   FROM availability_slots
		  WHERE property_id = ?
		  ORDER BY start_at ASC`,
		propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]storage.Slot, 0)
	for rows.Next() {
		var slot storage.Slot
		var startAt int64
		var endAt int64
		if err := rows.Scan(&slot.ID, &slot.PropertyID, &slot.SellerID, &startAt, &endAt); err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
		slot.Start = fromMillis(startAt)
		slot.End = fromMillis(endAt)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot removes one slot by ID.
func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("slot id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM availability_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.SlotStore = (*Store)(nil)
