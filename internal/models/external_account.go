package models

import (
	"time"

	"github.com/google/uuid"
)

// ExternalAccountMapping links a vendor-native username to an employee for
// vendors whose records carry no email (e.g. GitHub handles). Unique on
// (vendor_type, external_username). Maintained by administrators or bulk
// link tooling; the reconciliation engine only reads it.
type ExternalAccountMapping struct {
	ID               uuid.UUID  `json:"id"`
	VendorType       VendorType `json:"vendor_type"`
	ExternalUsername string     `json:"external_username"`
	EmployeeID       uuid.UUID  `json:"employee_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewExternalAccountMapping creates a new external account link.
func NewExternalAccountMapping(vendorType VendorType, externalUsername string, employeeID uuid.UUID) *ExternalAccountMapping {
	now := time.Now()
	return &ExternalAccountMapping{
		ID:               uuid.New(),
		VendorType:       vendorType,
		ExternalUsername: externalUsername,
		EmployeeID:       employeeID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
