package db

import (
	"context"
	"fmt"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
)

// Sync run methods

// CreateSyncRun creates a new sync run record.
func (db *DB) CreateSyncRun(ctx context.Context, r *models.SyncRun) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sync_runs (
			id, vendor_id, status, started_at, completed_at,
			created_count, updated_count, expired_count, needs_review_count, skipped_count,
			error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.VendorID, string(r.Status), r.StartedAt, r.CompletedAt,
		r.Created, r.Updated, r.Expired, r.NeedsReview, r.Skipped,
		r.ErrorMessage, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create sync run: %w", err)
	}
	return nil
}

// UpdateSyncRun updates a sync run's status and counters.
func (db *DB) UpdateSyncRun(ctx context.Context, r *models.SyncRun) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE sync_runs SET
			status = $2, completed_at = $3,
			created_count = $4, updated_count = $5, expired_count = $6,
			needs_review_count = $7, skipped_count = $8, error_message = $9
		WHERE id = $1
	`, r.ID, string(r.Status), r.CompletedAt,
		r.Created, r.Updated, r.Expired, r.NeedsReview, r.Skipped, r.ErrorMessage)
	if err != nil {
		return fmt.Errorf("update sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns the most recent sync runs for a vendor, newest first.
func (db *DB) ListSyncRuns(ctx context.Context, vendorID uuid.UUID, limit int) ([]*models.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, vendor_id, status, started_at, completed_at,
		       created_count, updated_count, expired_count, needs_review_count, skipped_count,
		       error_message, created_at
		FROM sync_runs
		WHERE vendor_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, vendorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		var r models.SyncRun
		var statusStr string
		if err := rows.Scan(&r.ID, &r.VendorID, &statusStr, &r.StartedAt, &r.CompletedAt,
			&r.Created, &r.Updated, &r.Expired, &r.NeedsReview, &r.Skipped,
			&r.ErrorMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		r.Status = models.SyncRunStatus(statusStr)
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}
	return runs, nil
}
