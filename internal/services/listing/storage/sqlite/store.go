// Package sqlite provides a SQLite-backed listing storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/maisonhq/maison/internal/platform/storage/sqlitemigrate"
	"github.com/maisonhq/maison/internal/services/listing/storage"
	"github.com/maisonhq/maison/internal/services/listing/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists listing state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite listing store and applies embedded migrations.
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

// CreateListing inserts one listing record.
func (s *Store) CreateListing(ctx context.Context, listing storage.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(listing.ID)
	title := strings.TrimSpace(listing.Title)
	sellerID := strings.TrimSpace(listing.SellerID)
	status := strings.TrimSpace(listing.Status)
	if id == "" {
		return fmt.Errorf("listing id is required")
	}
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if sellerID == "" {
		return fmt.Errorf("seller id is required")
	}
	if listing.Price <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}
	if status == "" {
		status = storage.StatusActive
	}
	createdAt := listing.CreatedAt.UTC()
	updatedAt := listing.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO listings (
		   id, title, description, price, bedrooms, bathrooms,
		   postcode, seller_id, status, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		title,
		strings.TrimSpace(listing.Description),
		listing.Price,
		listing.Bedrooms,
		listing.Bathrooms,
		strings.TrimSpace(listing.Postcode),
		sellerID,
		status,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isListingUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// GetListing returns one listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (storage.Listing, error) {
	if err := ctx.Err(); err != nil {
		return storage.Listing{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Listing{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Listing{}, fmt.Errorf("listing id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, description, price, bedrooms, bathrooms,
		        postcode, seller_id, status, created_at, updated_at
		   FROM listings
		  WHERE id = ?`,
		id,
	)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Listing{}, storage.ErrNotFound
		}
		return storage.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// ListListings returns one page of listings in ID order.
func (s *Store) ListListings(ctx context.Context, pageSize int, pageToken string) (storage.ListingPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListingPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListingPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.ListingPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.ListingPage{
		Listings: make([]storage.Listing, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, title, description, price, bedrooms, bathrooms,
			        postcode, seller_id, status, created_at, updated_at
			   FROM listings
			  ORDER BY id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, title, description, price, bedrooms, bathrooms,
			        postcode, seller_id, status, created_at, updated_at
			   FROM listings
			  WHERE id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
		}
		page.Listings = append(page.Listings, listing)
	}
	if err := rows.Err(); err != nil {
		return storage.ListingPage{}, fmt.Errorf("list listings: %w", err)
	}
	if len(page.Listings) > pageSize {
		page.NextPageToken = page.Listings[pageSize-1].ID
		page.Listings = page.Listings[:pageSize]
	}

	return page, nil
}

func scanListing(row interface{ Scan(dest ...any) error }) (storage.Listing, error) {
	var listing storage.Listing
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.Postcode,
		&listing.SellerID,
		&listing.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Listing{}, err
	}
	listing.CreatedAt = fromMillis(createdAt)
	listing.UpdatedAt = fromMillis(updatedAt)
	return listing, nil
}

func isListingUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "listings.id")
}

var _ storage.ListingStore = (*Store)(nil)
