// Package providers defines the vendor adapter contract: each adapter
// normalizes one vendor's API into the common raw seat record shape the
// reconciliation engine consumes.
package providers

import (
	"context"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
)

// RawRecord is one per-seat record as reported by a vendor. ExternalID and
// Status are mandatory; everything else is best-effort per vendor.
type RawRecord struct {
	ExternalID  string
	Email       string
	DisplayName string
	LicenseType string
	Status      models.LicenseStatus

	Cost         *float64
	Currency     string
	BillingCycle models.BillingCycle

	LastActivityAt *time.Time
	Metadata       map[string]string
}

// EffectiveEmail returns the record's email, falling back to the external
// ID when that looks like an email address.
func (r RawRecord) EffectiveEmail() string {
	if r.Email != "" {
		return r.Email
	}
	if looksLikeEmail(r.ExternalID) {
		return r.ExternalID
	}
	return ""
}

func looksLikeEmail(s string) bool {
	at := -1
	for i, c := range s {
		if c == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(s)-1
}

// Provider fetches the current seat records for one vendor.
type Provider interface {
	// Type returns the vendor type this provider serves.
	Type() models.VendorType

	// FetchLicenses returns all current seat records. Transport errors
	// abort the vendor's run; they never abort the whole reconciliation.
	FetchLicenses(ctx context.Context) ([]RawRecord, error)
}
