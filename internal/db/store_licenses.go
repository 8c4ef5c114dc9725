package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// License methods. The Tx variants are used by the reconciliation
// coordinator so that one vendor's full diff commits or rolls back as a
// unit; the pool variants serve the API surface.

const licenseColumns = `
	id, vendor_id, external_id, email, display_name, license_type, status,
	employee_id, is_service_account, service_account_owner_id,
	is_admin_account, admin_account_owner_id, is_external_email,
	suggested_employee_id, match_confidence, match_status, match_method,
	monthly_cost, currency,
	expires_at, cancelled_at, cancellation_effective_at, cancellation_reason,
	last_activity_at, metadata, synced_at, created_at, updated_at
`

func scanLicense(row pgx.Row) (*models.License, error) {
	var l models.License
	var statusStr, matchStatusStr, matchMethodStr string
	var metadataJSON []byte
	err := row.Scan(
		&l.ID, &l.VendorID, &l.ExternalID, &l.Email, &l.DisplayName, &l.LicenseType, &statusStr,
		&l.EmployeeID, &l.IsServiceAccount, &l.ServiceAccountOwnerID,
		&l.IsAdminAccount, &l.AdminAccountOwnerID, &l.IsExternalEmail,
		&l.SuggestedEmployeeID, &l.MatchConfidence, &matchStatusStr, &matchMethodStr,
		&l.MonthlyCost, &l.Currency,
		&l.ExpiresAt, &l.CancelledAt, &l.CancellationEffectiveAt, &l.CancellationReason,
		&l.LastActivityAt, &metadataJSON, &l.SyncedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = models.LicenseStatus(statusStr)
	l.MatchStatus = models.MatchStatus(matchStatusStr)
	l.MatchMethod = models.MatchMethod(matchMethodStr)
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &l.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal license metadata: %w", err)
		}
	}
	return &l, nil
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal license metadata: %w", err)
	}
	return data, nil
}

// GetLicensesByVendorTx loads all persisted licenses for a vendor inside a
// transaction, keyed by external ID. The coordinator diffs fetched records
// against this map.
func (db *DB) GetLicensesByVendorTx(ctx context.Context, tx pgx.Tx, vendorID uuid.UUID) (map[string]*models.License, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE vendor_id = $1
	`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list licenses by vendor: %w", err)
	}
	defer rows.Close()

	licenses := make(map[string]*models.License)
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses[l.ExternalID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate licenses: %w", err)
	}
	return licenses, nil
}

// CreateLicenseTx inserts a new license row inside a transaction.
func (db *DB) CreateLicenseTx(ctx context.Context, tx pgx.Tx, l *models.License) error {
	metadataJSON, err := marshalMetadata(l.Metadata)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO licenses (
			id, vendor_id, external_id, email, display_name, license_type, status,
			employee_id, is_service_account, service_account_owner_id,
			is_admin_account, admin_account_owner_id, is_external_email,
			suggested_employee_id, match_confidence, match_status, match_method,
			monthly_cost, currency,
			expires_at, cancelled_at, cancellation_effective_at, cancellation_reason,
			last_activity_at, metadata, synced_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19,
			$20, $21, $22, $23,
			$24, $25, $26, $27, $28
		)
	`,
		l.ID, l.VendorID, l.ExternalID, l.Email, l.DisplayName, l.LicenseType, string(l.Status),
		l.EmployeeID, l.IsServiceAccount, l.ServiceAccountOwnerID,
		l.IsAdminAccount, l.AdminAccountOwnerID, l.IsExternalEmail,
		l.SuggestedEmployeeID, l.MatchConfidence, string(l.MatchStatus), string(l.MatchMethod),
		l.MonthlyCost, l.Currency,
		l.ExpiresAt, l.CancelledAt, l.CancellationEffectiveAt, l.CancellationReason,
		l.LastActivityAt, metadataJSON, l.SyncedAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create license: %w", err)
	}
	return nil
}

// UpdateLicenseTx updates every engine-owned field of a license row inside
// a transaction. Callers are responsible for not touching review-locked
// matching fields; the coordinator enforces that before calling.
func (db *DB) UpdateLicenseTx(ctx context.Context, tx pgx.Tx, l *models.License) error {
	metadataJSON, err := marshalMetadata(l.Metadata)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE licenses SET
			email = $2, display_name = $3, license_type = $4, status = $5,
			employee_id = $6, is_service_account = $7, service_account_owner_id = $8,
			is_admin_account = $9, admin_account_owner_id = $10, is_external_email = $11,
			suggested_employee_id = $12, match_confidence = $13, match_status = $14, match_method = $15,
			monthly_cost = $16, currency = $17,
			expires_at = $18, cancelled_at = $19, cancellation_effective_at = $20, cancellation_reason = $21,
			last_activity_at = $22, metadata = $23, synced_at = $24, updated_at = $25
		WHERE id = $1
	`,
		l.ID, l.Email, l.DisplayName, l.LicenseType, string(l.Status),
		l.EmployeeID, l.IsServiceAccount, l.ServiceAccountOwnerID,
		l.IsAdminAccount, l.AdminAccountOwnerID, l.IsExternalEmail,
		l.SuggestedEmployeeID, l.MatchConfidence, string(l.MatchStatus), string(l.MatchMethod),
		l.MonthlyCost, l.Currency,
		l.ExpiresAt, l.CancelledAt, l.CancellationEffectiveAt, l.CancellationReason,
		l.LastActivityAt, metadataJSON, l.SyncedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update license: %w", err)
	}
	return nil
}

// TryVendorLockTx attempts to take the per-vendor advisory lock for the
// duration of the transaction. Returns false if another process holds it.
func (db *DB) TryVendorLockTx(ctx context.Context, tx pgx.Tx, vendorID uuid.UUID) (bool, error) {
	var acquired bool
	err := tx.QueryRow(ctx,
		"SELECT pg_try_advisory_xact_lock($1)", vendorLockKey(vendorID),
	).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("acquire vendor advisory lock: %w", err)
	}
	return acquired, nil
}

// vendorLockKey derives a stable advisory lock key from a vendor UUID.
func vendorLockKey(vendorID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(vendorID[:8]))
}

// GetLicenseByID returns a license by ID.
func (db *DB) GetLicenseByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	l, err := scanLicense(db.Pool.QueryRow(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("get license by ID: %w", err)
	}
	return l, nil
}

// LicenseFilter narrows ListLicenses results. Zero values mean "no filter".
type LicenseFilter struct {
	VendorID    *uuid.UUID
	Status      models.LicenseStatus
	MatchStatus *models.MatchStatus
	NeedsReview bool
}

// ListLicenses returns licenses matching the filter, newest first.
func (db *DB) ListLicenses(ctx context.Context, filter LicenseFilter) ([]*models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE 1=1`
	var args []any

	if filter.VendorID != nil {
		args = append(args, *filter.VendorID)
		query += fmt.Sprintf(" AND vendor_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.MatchStatus != nil {
		args = append(args, string(*filter.MatchStatus))
		query += fmt.Sprintf(" AND match_status = $%d", len(args))
	}
	if filter.NeedsReview {
		query += fmt.Sprintf(" AND match_status IN ('%s', '%s', '%s')",
			models.MatchStatusSuggested, models.MatchStatusExternalReview, models.MatchStatusExternalGuest)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate licenses: %w", err)
	}
	return licenses, nil
}

// ConfirmLicenseMatch records a reviewer's confirmation: the license belongs
// to the given employee. Confirmed rows are never re-matched by the engine.
func (db *DB) ConfirmLicenseMatch(ctx context.Context, id, employeeID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE licenses
		SET employee_id = $2, suggested_employee_id = NULL, match_status = $3, updated_at = $4
		WHERE id = $1
	`, id, employeeID, string(models.MatchStatusConfirmed), time.Now())
	if err != nil {
		return fmt.Errorf("confirm license match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("confirm license match: license %s not found", id)
	}
	return nil
}

// RejectLicenseMatch records a reviewer's rejection: the suggestion was
// wrong and the license stays unassigned. Rejected rows are never
// re-matched by the engine.
func (db *DB) RejectLicenseMatch(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE licenses
		SET employee_id = NULL, match_status = $2, updated_at = $3
		WHERE id = $1
	`, id, string(models.MatchStatusRejected), time.Now())
	if err != nil {
		return fmt.Errorf("reject license match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reject license match: license %s not found", id)
	}
	return nil
}

// ActiveMonthlyCostByVendor returns the summed monthly cost of active
// licenses per vendor. Expired and cancelled seats do not contribute.
func (db *DB) ActiveMonthlyCostByVendor(ctx context.Context) (map[uuid.UUID]float64, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT vendor_id, COALESCE(SUM(monthly_cost), 0)
		FROM licenses
		WHERE status = $1
		GROUP BY vendor_id
	`, string(models.LicenseStatusActive))
	if err != nil {
		return nil, fmt.Errorf("aggregate active monthly cost: %w", err)
	}
	defer rows.Close()

	costs := make(map[uuid.UUID]float64)
	for rows.Next() {
		var vendorID uuid.UUID
		var total float64
		if err := rows.Scan(&vendorID, &total); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		costs[vendorID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost rows: %w", err)
	}
	return costs, nil
}

// CountLicensesNeedingReview returns how many licenses await a reviewer.
func (db *DB) CountLicensesNeedingReview(ctx context.Context) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM licenses
		WHERE match_status IN ($1, $2, $3)
	`, string(models.MatchStatusSuggested), string(models.MatchStatusExternalReview), string(models.MatchStatusExternalGuest)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count licenses needing review: %w", err)
	}
	return count, nil
}
