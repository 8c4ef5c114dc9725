package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceAccountPattern maps an email glob pattern to a non-human account
// attribution. Patterns support * and ? wildcards; a pattern without
// wildcards is treated as an exact, case-insensitive email.
type ServiceAccountPattern struct {
	ID          uuid.UUID  `json:"id"`
	Pattern     string     `json:"pattern"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewServiceAccountPattern creates a new service-account pattern.
func NewServiceAccountPattern(pattern string, ownerID *uuid.UUID, displayName string) *ServiceAccountPattern {
	now := time.Now()
	return &ServiceAccountPattern{
		ID:          uuid.New(),
		Pattern:     pattern,
		OwnerID:     ownerID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AdminAccountPattern maps an email glob pattern to a shared or role-based
// administrative account attribution. Same matching rules as
// ServiceAccountPattern; the two flags are independent.
type AdminAccountPattern struct {
	ID          uuid.UUID  `json:"id"`
	Pattern     string     `json:"pattern"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewAdminAccountPattern creates a new admin-account pattern.
func NewAdminAccountPattern(pattern string, ownerID *uuid.UUID, displayName string) *AdminAccountPattern {
	now := time.Now()
	return &AdminAccountPattern{
		ID:          uuid.New(),
		Pattern:     pattern,
		OwnerID:     ownerID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// LicenseTypeRule marks every seat with an exact (case-insensitive)
// license-type string as a service account attributed to an owner.
type LicenseTypeRule struct {
	ID          uuid.UUID  `json:"id"`
	LicenseType string     `json:"license_type"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewLicenseTypeRule creates a new license-type rule.
func NewLicenseTypeRule(licenseType string, ownerID *uuid.UUID) *LicenseTypeRule {
	now := time.Now()
	return &LicenseTypeRule{
		ID:          uuid.New(),
		LicenseType: licenseType,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
