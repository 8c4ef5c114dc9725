package db

import (
	"context"
	"fmt"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
)

// Pattern registry methods. The registries are administered elsewhere; the
// reconciliation engine batch-loads them once per run.

// CreateServiceAccountPattern creates a new service-account pattern.
func (db *DB) CreateServiceAccountPattern(ctx context.Context, p *models.ServiceAccountPattern) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO service_account_patterns (id, pattern, owner_id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Pattern, p.OwnerID, p.DisplayName, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create service account pattern: %w", err)
	}
	return nil
}

// ListServiceAccountPatterns returns all service-account patterns.
func (db *DB) ListServiceAccountPatterns(ctx context.Context) ([]*models.ServiceAccountPattern, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, pattern, owner_id, display_name, created_at, updated_at
		FROM service_account_patterns
		ORDER BY pattern
	`)
	if err != nil {
		return nil, fmt.Errorf("list service account patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.ServiceAccountPattern
	for rows.Next() {
		var p models.ServiceAccountPattern
		if err := rows.Scan(&p.ID, &p.Pattern, &p.OwnerID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service account pattern: %w", err)
		}
		patterns = append(patterns, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service account patterns: %w", err)
	}
	return patterns, nil
}

// CreateAdminAccountPattern creates a new admin-account pattern.
func (db *DB) CreateAdminAccountPattern(ctx context.Context, p *models.AdminAccountPattern) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_account_patterns (id, pattern, owner_id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Pattern, p.OwnerID, p.DisplayName, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create admin account pattern: %w", err)
	}
	return nil
}

// ListAdminAccountPatterns returns all admin-account patterns.
func (db *DB) ListAdminAccountPatterns(ctx context.Context) ([]*models.AdminAccountPattern, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, pattern, owner_id, display_name, created_at, updated_at
		FROM admin_account_patterns
		ORDER BY pattern
	`)
	if err != nil {
		return nil, fmt.Errorf("list admin account patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.AdminAccountPattern
	for rows.Next() {
		var p models.AdminAccountPattern
		if err := rows.Scan(&p.ID, &p.Pattern, &p.OwnerID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan admin account pattern: %w", err)
		}
		patterns = append(patterns, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin account patterns: %w", err)
	}
	return patterns, nil
}

// CreateLicenseTypeRule creates a new license-type rule.
func (db *DB) CreateLicenseTypeRule(ctx context.Context, r *models.LicenseTypeRule) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO license_type_rules (id, license_type, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.LicenseType, r.OwnerID, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create license type rule: %w", err)
	}
	return nil
}

// ListLicenseTypeRules returns all license-type rules.
func (db *DB) ListLicenseTypeRules(ctx context.Context) ([]*models.LicenseTypeRule, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, license_type, owner_id, created_at, updated_at
		FROM license_type_rules
		ORDER BY license_type
	`)
	if err != nil {
		return nil, fmt.Errorf("list license type rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.LicenseTypeRule
	for rows.Next() {
		var r models.LicenseTypeRule
		if err := rows.Scan(&r.ID, &r.LicenseType, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan license type rule: %w", err)
		}
		rules = append(rules, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate license type rules: %w", err)
	}
	return rules, nil
}
