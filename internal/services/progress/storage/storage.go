// Package storage defines persistence contracts for transaction progress.
package storage

import (
	"context"

	"github.com/maisonhq/maison/internal/progress"
)

// ProgressStore persists one flat progress record per user and transaction.
//
// Records are created implicitly: reading a pair that was never written
// returns a zero-valued record, and the first update inserts the row.
type ProgressStore interface {
	// GetProgress returns the record for the user and transaction, or a
	// zero-valued record when none has been written yet.
	GetProgress(ctx context.Context, userID, transactionID string) (progress.Record, error)
	// ApplyUpdate upserts the set fields of the update and returns the
	// record as stored afterwards.
	ApplyUpdate(ctx context.Context, userID, transactionID string, update progress.Update) (progress.Record, error)
}
