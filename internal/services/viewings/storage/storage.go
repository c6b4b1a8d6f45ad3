// Package storage defines persistence contracts for viewing availability.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested slot is missing.
	ErrNotFound = errors.New("record not found")
	// ErrOverlap indicates a slot overlaps an existing one for the property.
	ErrOverlap = errors.New("slot overlaps an existing slot")
)

// Slot stores one viewing availability window for a property.
type Slot struct {
	ID         string
	PropertyID string
	SellerID   string
	Start      time.Time
	End        time.Time
}

// SlotStore persists viewing availability slots.
type SlotStore interface {
	// CreateSlot inserts one slot. Slots for the same property must not
	// overlap in time.
	CreateSlot(ctx context.Context, slot Slot) error
	// ListSlots returns all slots for a property ordered by start time.
	ListSlots(ctx context.Context, propertyID string) ([]Slot, error)
	// DeleteSlot removes one slot by ID.
	DeleteSlot(ctx context.Context, id string) error
}
