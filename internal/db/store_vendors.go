package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
)

// Vendor methods

// CreateVendor creates a new vendor record.
func (db *DB) CreateVendor(ctx context.Context, v *models.Vendor) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO vendors (id, name, type, enabled, currency, billing_cycle, config, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, v.ID, v.Name, string(v.Type), v.Enabled, v.Currency, string(v.BillingCycle), v.Config, v.LastSyncedAt, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

// GetVendorByID returns a vendor by ID.
func (db *DB) GetVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	var typeStr, cycleStr string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, type, enabled, currency, billing_cycle, config, last_synced_at, created_at, updated_at
		FROM vendors
		WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &typeStr, &v.Enabled, &v.Currency, &cycleStr, &v.Config, &v.LastSyncedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get vendor by ID: %w", err)
	}
	v.Type = models.VendorType(typeStr)
	v.BillingCycle = models.BillingCycle(cycleStr)
	return &v, nil
}

// ListVendors returns all vendors ordered by name.
func (db *DB) ListVendors(ctx context.Context) ([]*models.Vendor, error) {
	return db.listVendors(ctx, false)
}

// ListEnabledVendors returns vendors with reconciliation enabled.
func (db *DB) ListEnabledVendors(ctx context.Context) ([]*models.Vendor, error) {
	return db.listVendors(ctx, true)
}

func (db *DB) listVendors(ctx context.Context, enabledOnly bool) ([]*models.Vendor, error) {
	query := `
		SELECT id, name, type, enabled, currency, billing_cycle, config, last_synced_at, created_at, updated_at
		FROM vendors
	`
	if enabledOnly {
		query += " WHERE enabled = TRUE"
	}
	query += " ORDER BY name"

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		var v models.Vendor
		var typeStr, cycleStr string
		if err := rows.Scan(&v.ID, &v.Name, &typeStr, &v.Enabled, &v.Currency, &cycleStr, &v.Config, &v.LastSyncedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		v.Type = models.VendorType(typeStr)
		v.BillingCycle = models.BillingCycle(cycleStr)
		vendors = append(vendors, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}

// UpdateVendor updates a vendor's mutable settings.
func (db *DB) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	v.UpdatedAt = time.Now()
	tag, err := db.Pool.Exec(ctx, `
		UPDATE vendors
		SET name = $2, enabled = $3, currency = $4, billing_cycle = $5, config = $6, updated_at = $7
		WHERE id = $1
	`, v.ID, v.Name, v.Enabled, v.Currency, string(v.BillingCycle), v.Config, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update vendor: vendor %s not found", v.ID)
	}
	return nil
}

// UpdateVendorLastSynced marks a vendor as synced at the given time.
func (db *DB) UpdateVendorLastSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE vendors
		SET last_synced_at = $2, updated_at = $3
		WHERE id = $1
	`, id, syncedAt, time.Now())
	if err != nil {
		return fmt.Errorf("update vendor last synced: %w", err)
	}
	return nil
}
