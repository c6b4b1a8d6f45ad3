// Package sqlite provides a SQLite-backed progress storage implementation.
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
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/services/progress/storage"
	"github.com/maisonhq/maison/internal/services/progress/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists transaction progress in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite progress store and applies embedded migrations.
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

const recordColumns = `mortgage_decision, mortgage_provider, onsite_visit_required,
	mortgage_valuation_schedule_date, mortgage_valuation_schedule_time,
	mortgage_valuation_visit_completed,
	property_survey_decision, surveyor_name, surveyor_email, surveyor_phone,
	survey_schedule_date, survey_schedule_time, survey_visit_completed,
	survey_approval,
	buyer_solicitor_name, buyer_solicitor_contact,
	seller_solicitor_name, seller_solicitor_contact,
	buyer_final_checks_confirmed, seller_final_checks_confirmed,
	buyer_exchange_contracts_confirmed, seller_exchange_contracts_confirmed,
	buyer_completion_confirmed, seller_completion_confirmed`

func scanRecord(row interface{ Scan(dest ...any) error }, record *progress.Record) error {
	return row.Scan(
		&record.MortgageDecision,
		&record.MortgageProvider,
		&record.OnsiteVisitRequired,
		&record.MortgageValuationScheduleDate,
		&record.MortgageValuationScheduleTime,
		&record.MortgageValuationVisitCompleted,
		&record.PropertySurveyDecision,
		&record.SurveyorName,
		&record.SurveyorEmail,
		&record.SurveyorPhone,
		&record.SurveyScheduleDate,
		&record.SurveyScheduleTime,
		&record.SurveyVisitCompleted,
		&record.SurveyApproval,
		&record.BuyerSolicitorName,
		&record.BuyerSolicitorContact,
		&record.SellerSolicitorName,
		&record.SellerSolicitorContact,
		&record.BuyerFinalChecksConfirmed,
		&record.SellerFinalChecksConfirmed,
		&record.BuyerExchangeContractsConfirmed,
		&record.SellerExchangeContractsConfirmed,
		&record.BuyerCompletionConfirmed,
		&record.SellerCompletionConfirmed,
	)
}

// GetProgress returns the record for the user and transaction. A pair that
// was never written reads as a zero-valued record.
func (s *Store) GetProgress(ctx context.Context, userID, transactionID string) (progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return progress.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return progress.Record{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	transactionID = strings.TrimSpace(transactionID)
	if userID == "" {
		return progress.Record{}, fmt.Errorf("user id is required")
	}
	if transactionID == "" {
		return progress.Record{}, fmt.Errorf("transaction id is required")
	}

	record := progress.Record{UserID: userID, TransactionID: transactionID}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+`
		   FROM transaction_progress
		  WHERE user_id = ? AND transaction_id = ?`,
		userID,
		transactionID,
	)
	if err := scanRecord(row, &record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, nil
		}
		return progress.Record{}, fmt.Errorf("get progress: %w", err)
	}
	return record, nil
}

// ApplyUpdate upserts the set fields of the update and returns the stored
// record. An empty update still creates the row, so a first read-after-write
// sees an explicit zero record.
func (s *Store) ApplyUpdate(ctx context.Context, userID, transactionID string, update progress.Update) (progress.Record, error) {
	if err := ctx.Err(); err != nil {
		return progress.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return progress.Record{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	transactionID = strings.TrimSpace(transactionID)
	if userID == "" {
		return progress.Record{}, fmt.Errorf("user id is required")
	}
	if transactionID == "" {
		return progress.Record{}, fmt.Errorf("transaction id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return progress.Record{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toMillis(time.Now())
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO transaction_progress (user_id, transaction_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, transaction_id) DO NOTHING`,
		userID,
		transactionID,
		now,
		now,
	); err != nil {
		return progress.Record{}, fmt.Errorf("ensure progress row: %w", err)
	}

	// Column names come from the update's fixed field table, never from
	// request input.
	if fields := update.Fields(); len(fields) > 0 {
		assignments := make([]string, 0, len(fields)+1)
		args := make([]any, 0, len(fields)+3)
		for _, f := range fields {
			assignments = append(assignments, f.Name+" = ?")
			args = append(args, f.Value)
		}
		assignments = append(assignments, "updated_at = ?")
		args = append(args, now, userID, transactionID)
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE transaction_progress SET `+strings.Join(assignments, ", ")+`
			  WHERE user_id = ? AND transaction_id = ?`,
			args...,
		); err != nil {
			return progress.Record{}, fmt.Errorf("apply progress update: %w", err)
		}
	}

	record := progress.Record{UserID: userID, TransactionID: transactionID}
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+`
		   FROM transaction_progress
		  WHERE user_id = ? AND transaction_id = ?`,
		userID,
		transactionID,
	)
	if err := scanRecord(row, &record); err != nil {
		return progress.Record{}, fmt.Errorf("read back progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return progress.Record{}, fmt.Errorf("commit update: %w", err)
	}
	return record, nil
}

var _ storage.ProgressStore = (*Store)(nil)
