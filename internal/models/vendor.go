package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VendorType identifies which provider adapter a vendor uses.
type VendorType string

const (
	VendorTypeGoogleWorkspace VendorType = "google_workspace"
	VendorTypeMicrosoft365    VendorType = "microsoft365"
	VendorTypeSlack           VendorType = "slack"
	VendorTypeGitHub          VendorType = "github"
	VendorTypeZoom            VendorType = "zoom"
	VendorTypeAtlassian       VendorType = "atlassian"
	// VendorTypeStatic serves fixture data from vendor config; used for
	// demos and tests.
	VendorTypeStatic VendorType = "static"
)

// ValidVendorTypes returns all known vendor types.
func ValidVendorTypes() []VendorType {
	return []VendorType{
		VendorTypeGoogleWorkspace,
		VendorTypeMicrosoft365,
		VendorTypeSlack,
		VendorTypeGitHub,
		VendorTypeZoom,
		VendorTypeAtlassian,
		VendorTypeStatic,
	}
}

// ValidVendorType checks if a vendor type string is known.
func ValidVendorType(s string) bool {
	for _, t := range ValidVendorTypes() {
		if VendorType(s) == t {
			return true
		}
	}
	return false
}

// BillingCycle represents the cadence a vendor bills a seat at.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
	BillingCyclePerpetual BillingCycle = "perpetual"
	BillingCycleOneTime   BillingCycle = "one_time"
)

// ValidBillingCycle checks if a billing cycle string is known.
func ValidBillingCycle(s string) bool {
	switch BillingCycle(s) {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleYearly,
		BillingCyclePerpetual, BillingCycleOneTime:
		return true
	default:
		return false
	}
}

// Vendor is one configured software vendor whose seats are reconciled.
type Vendor struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Type         VendorType      `json:"type"`
	Enabled      bool            `json:"enabled"`
	Currency     string          `json:"currency"`
	BillingCycle BillingCycle    `json:"billing_cycle"`
	Config       json.RawMessage `json:"config,omitempty"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewVendor creates a new enabled Vendor with monthly billing.
func NewVendor(name string, vendorType VendorType) *Vendor {
	now := time.Now()
	return &Vendor{
		ID:           uuid.New(),
		Name:         name,
		Type:         vendorType,
		Enabled:      true,
		Currency:     "USD",
		BillingCycle: BillingCycleMonthly,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
