package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/maisonhq/maison/internal/services/viewings/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "viewings.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func slotAt(id string, startHour, endHour int) storage.Slot {
	day := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	return storage.Slot{
		ID:         id,
		PropertyID: "prop-1",
		SellerID:   "seller-1",
		Start:      day.Add(time.Duration(startHour) * time.Hour),
		End:        day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestCreateSlotRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateSlot(context.Background(), slotAt("slot-1", 12, 10)); err == nil {
		t.Fatal("expected end-before-start error")
	}
	if err := store.CreateSlot(context.Background(), slotAt("slot-1", 10, 10)); err == nil {
		t.Fatal("expected zero-length window error")
	}
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateSlot(ctx, slotAt("slot-1", 10, 12)); err != nil {
		t.Fatalf("create slot: %v", err)
	}

	overlapping := []storage.Slot{
		slotAt("slot-2", 11, 13),
		slotAt("slot-3", 9, 11),
		slotAt("slot-4", 10, 12),
		slotAt("slot-5", 9, 13),
	}
	for _, slot := range overlapping {
		if err := store.CreateSlot(ctx, slot); !errors.Is(err, storage.ErrOverlap) {
			t.Fatalf("slot %s: err = %v, want ErrOverlap", slot.ID, err)
		}
	}

	// Back-to-back windows do not overlap.
	if err := store.CreateSlot(ctx, slotAt("slot-6", 12, 14)); err != nil {
		t.Fatalf("adjacent slot: %v", err)
	}
}

func TestCreateSlotAllowsOverlapAcrossProperties(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateSlot(ctx, slotAt("slot-1", 10, 12)); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	other := slotAt("slot-2", 10, 12)
	other.PropertyID = "prop-2"
	if err := store.CreateSlot(ctx, other); err != nil {
		t.Fatalf("other property slot: %v", err)
	}
}

func TestListSlotsOrderedByStart(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, slot := range []storage.Slot{
		slotAt("slot-late", 15, 16),
		slotAt("slot-early", 9, 10),
		slotAt("slot-mid", 12, 13),
	} {
		if err := store.CreateSlot(ctx, slot); err != nil {
			t.Fatalf("create %s: %v", slot.ID, err)
		}
	}

	slots, err := store.ListSlots(ctx, "prop-1")
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(slots))
	}
	order := []string{"slot-early", "slot-mid", "slot-late"}
	for i, want := range order {
		if slots[i].ID != want {
			t.Fatalf("slot %d = %q, want %q", i, slots[i].ID, want)
		}
	}
}

func TestDeleteSlot(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateSlot(ctx, slotAt("slot-1", 10, 12)); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	if err := store.DeleteSlot(ctx, "slot-1"); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if err := store.DeleteSlot(ctx, "slot-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	slots, err := store.ListSlots(ctx, "prop-1")
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots = %d, want 0", len(slots))
	}
}
