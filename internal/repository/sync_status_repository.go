package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// SyncStatusRepository maintains the sync_status ledger, one row per job
// family. The scheduler reads it to gate long-cadence jobs; the runner
// writes it around every job execution.
type SyncStatusRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSyncStatusRepository creates a new sync status repository
func NewSyncStatusRepository(db *sqlx.DB, logger *zap.Logger) *SyncStatusRepository {
	return &SyncStatusRepository{
		db:     db,
		logger: logger,
	}
}

// MarkRunning records that a job family has started a run
func (r *SyncStatusRepository) MarkRunning(ctx context.Context, syncType string) error {
	query := `
		INSERT INTO sync_status (sync_type, status, last_sync)
		VALUES ($1, 'running', NOW())
		ON CONFLICT (sync_type)
		DO UPDATE SET status = 'running', last_sync = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, syncType); err != nil {
		r.logger.Error("Failed to mark sync running",
			zap.Error(err),
			zap.String("sync_type", syncType))
		return err
	}

	return nil
}

// MarkCompleted records a successful run with its processed-record count
func (r *SyncStatusRepository) MarkCompleted(ctx context.Context, syncType string, recordsProcessed int) error {
	query := `
		INSERT INTO sync_status (sync_type, status, records_processed, error_message, last_sync)
		VALUES ($1, 'completed', $2, NULL, NOW())
		ON CONFLICT (sync_type)
		DO UPDATE SET
			status = 'completed',
			records_processed = EXCLUDED.records_processed,
			error_message = NULL,
			last_sync = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, syncType, recordsProcessed); err != nil {
		r.logger.Error("Failed to mark sync completed",
			zap.Error(err),
			zap.String("sync_type", syncType))
		return err
	}

	return nil
}

// MarkFailed records a failed run with the captured error message
func (r *SyncStatusRepository) MarkFailed(ctx context.Context, syncType, errorMessage string) error {
	query := `
		INSERT INTO sync_status (sync_type, status, error_message, last_sync)
		VALUES ($1, 'failed', $2, NOW())
		ON CONFLICT (sync_type)
		DO UPDATE SET
			status = 'failed',
			error_message = EXCLUDED.error_message,
			last_sync = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, syncType, errorMessage); err != nil {
		r.logger.Error("Failed to mark sync failed",
			zap.Error(err),
			zap.String("sync_type", syncType))
		return err
	}

	return nil
}

// LastSync retrieves the last run timestamp for a job family, or nil when
// the family has never run
func (r *SyncStatusRepository) LastSync(ctx context.Context, syncType string) (*time.Time, error) {
	query := `SELECT last_sync FROM sync_status WHERE sync_type = $1`

	var lastSync sql.NullTime
	err := r.db.GetContext(ctx, &lastSync, query, syncType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get last sync",
			zap.Error(err),
			zap.String("sync_type", syncType))
		return nil, err
	}
	if !lastSync.Valid {
		return nil, nil
	}

	return &lastSync.Time, nil
}

// GetAll retrieves every ledger row for operator visibility
func (r *SyncStatusRepository) GetAll(ctx context.Context) ([]model.SyncStatus, error) {
	query := `
		SELECT sync_type, status, last_sync, records_processed, error_message
		FROM sync_status
		ORDER BY sync_type
	`

	var statuses []model.SyncStatus
	if err := r.db.SelectContext(ctx, &statuses, query); err != nil {
		r.logger.Error("Failed to get sync statuses", zap.Error(err))
		return nil, err
	}

	return statuses, nil
}
