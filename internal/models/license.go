package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseStatus represents the operational state of a seat at the vendor.
type LicenseStatus string

const (
	LicenseStatusActive     LicenseStatus = "active"
	LicenseStatusSuspended  LicenseStatus = "suspended"
	LicenseStatusPending    LicenseStatus = "pending"
	LicenseStatusUnassigned LicenseStatus = "unassigned"
	LicenseStatusExpired    LicenseStatus = "expired"
	LicenseStatusCancelled  LicenseStatus = "cancelled"
)

// ValidLicenseStatus checks if a status string is a known license status.
func ValidLicenseStatus(s string) bool {
	switch LicenseStatus(s) {
	case LicenseStatusActive, LicenseStatusSuspended, LicenseStatusPending,
		LicenseStatusUnassigned, LicenseStatusExpired, LicenseStatusCancelled:
		return true
	default:
		return false
	}
}

// MatchStatus represents where a license sits in the identity-matching
// review workflow. The empty string means the record has not been through
// the matching pipeline (service/admin accounts stay there).
type MatchStatus string

const (
	MatchStatusAutoMatched    MatchStatus = "auto_matched"
	MatchStatusSuggested      MatchStatus = "suggested"
	MatchStatusConfirmed      MatchStatus = "confirmed"
	MatchStatusRejected       MatchStatus = "rejected"
	MatchStatusExternalGuest  MatchStatus = "external_guest"
	MatchStatusExternalReview MatchStatus = "external_review"
)

// ValidMatchStatus checks if a status string is a known match status.
func ValidMatchStatus(s string) bool {
	switch MatchStatus(s) {
	case MatchStatusAutoMatched, MatchStatusSuggested, MatchStatusConfirmed,
		MatchStatusRejected, MatchStatusExternalGuest, MatchStatusExternalReview:
		return true
	default:
		return false
	}
}

// MatchMethod identifies which matching strategy produced an assignment.
type MatchMethod string

const (
	MatchMethodExactEmail      MatchMethod = "exact_email"
	MatchMethodLocalPart       MatchMethod = "local_part"
	MatchMethodFuzzyName       MatchMethod = "fuzzy_name"
	MatchMethodExternalAccount MatchMethod = "external_account"
)

// License is one persisted seat record, unique on (vendor_id, external_id).
// Rows are never deleted by the reconciliation engine; a seat disappearing
// upstream is a status transition.
type License struct {
	ID         uuid.UUID `json:"id"`
	VendorID   uuid.UUID `json:"vendor_id"`
	ExternalID string    `json:"external_id"`

	Email       string        `json:"email,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	LicenseType string        `json:"license_type,omitempty"`
	Status      LicenseStatus `json:"status"`

	EmployeeID            *uuid.UUID `json:"employee_id,omitempty"`
	IsServiceAccount      bool       `json:"is_service_account"`
	ServiceAccountOwnerID *uuid.UUID `json:"service_account_owner_id,omitempty"`
	IsAdminAccount        bool       `json:"is_admin_account"`
	AdminAccountOwnerID   *uuid.UUID `json:"admin_account_owner_id,omitempty"`
	IsExternalEmail       bool       `json:"is_external_email"`

	SuggestedEmployeeID *uuid.UUID  `json:"suggested_employee_id,omitempty"`
	MatchConfidence     float64     `json:"match_confidence"`
	MatchStatus         MatchStatus `json:"match_status,omitempty"`
	MatchMethod         MatchMethod `json:"match_method,omitempty"`

	MonthlyCost float64 `json:"monthly_cost"`
	Currency    string  `json:"currency,omitempty"`

	ExpiresAt               *time.Time `json:"expires_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	CancellationEffectiveAt *time.Time `json:"cancellation_effective_at,omitempty"`
	CancellationReason      string     `json:"cancellation_reason,omitempty"`

	LastActivityAt *time.Time        `json:"last_activity_at,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`

	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLicense creates a new License for the first sighting of an external ID.
func NewLicense(vendorID uuid.UUID, externalID string) *License {
	now := time.Now()
	return &License{
		ID:         uuid.New(),
		VendorID:   vendorID,
		ExternalID: externalID,
		Status:     LicenseStatusActive,
		SyncedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ReviewLocked reports whether a human reviewer has made a final decision
// on this license. Locked rows keep their assignment and matching fields
// across all later reconciliation runs.
func (l *License) ReviewLocked() bool {
	return l.MatchStatus == MatchStatusConfirmed || l.MatchStatus == MatchStatusRejected
}

// NeedsReview reports whether the license is waiting on a human decision.
func (l *License) NeedsReview() bool {
	switch l.MatchStatus {
	case MatchStatusSuggested, MatchStatusExternalReview, MatchStatusExternalGuest:
		return true
	default:
		return false
	}
}

// Terminal reports whether the license has left the vendor for good.
func (l *License) Terminal() bool {
	return l.Status == LicenseStatusExpired || l.Status == LicenseStatusCancelled
}
