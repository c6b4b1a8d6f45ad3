// Package storage defines persistence contracts for property listings.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested listing record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a listing with the same ID already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Listing statuses.
const (
	StatusActive    = "active"
	StatusUnderSale = "under_sale"
	StatusSold      = "sold"
)

// Listing stores one public property listing.
type Listing struct {
	ID          string
	Title       string
	Description string
	// Price is the asking price in pence.
	Price     int64
	Bedrooms  int
	Bathrooms int
	Postcode  string
	SellerID  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListingPage stores one page of listing records.
type ListingPage struct {
	Listings      []Listing
	NextPageToken string
}

// ListingStore persists property listing records.
type ListingStore interface {
	CreateListing(ctx context.Context, listing Listing) error
	GetListing(ctx context.Context, id string) (Listing, error)
	ListListings(ctx context.Context, pageSize int, pageToken string) (ListingPage, error)
}
