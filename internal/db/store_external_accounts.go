package db

import (
	"context"
	"fmt"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
)

// External account mapping methods

// CreateExternalAccountMapping creates a new external account link.
func (db *DB) CreateExternalAccountMapping(ctx context.Context, m *models.ExternalAccountMapping) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO external_account_mappings (id, vendor_type, external_username, employee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, string(m.VendorType), m.ExternalUsername, m.EmployeeID, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create external account mapping: %w", err)
	}
	return nil
}

// ListExternalAccountMappings returns links for a vendor type, or every
// link when vendorType is empty.
func (db *DB) ListExternalAccountMappings(ctx context.Context, vendorType models.VendorType) ([]*models.ExternalAccountMapping, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, vendor_type, external_username, employee_id, created_at, updated_at
		FROM external_account_mappings
		WHERE $1 = '' OR vendor_type = $1
		ORDER BY external_username
	`, string(vendorType))
	if err != nil {
		return nil, fmt.Errorf("list external account mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.ExternalAccountMapping
	for rows.Next() {
		var m models.ExternalAccountMapping
		var typeStr string
		if err := rows.Scan(&m.ID, &typeStr, &m.ExternalUsername, &m.EmployeeID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan external account mapping: %w", err)
		}
		m.VendorType = models.VendorType(typeStr)
		mappings = append(mappings, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate external account mappings: %w", err)
	}
	return mappings, nil
}
