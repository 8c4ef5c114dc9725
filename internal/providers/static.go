package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/rs/zerolog"
)

func init() {
	Register(models.VendorTypeStatic, NewStaticProvider)
}

// staticRecord is the JSON shape of one seat in a static vendor's config.
type staticRecord struct {
	ExternalID     string            `json:"external_id"`
	Email          string            `json:"email,omitempty"`
	DisplayName    string            `json:"display_name,omitempty"`
	LicenseType    string            `json:"license_type,omitempty"`
	Status         string            `json:"status,omitempty"`
	Cost           *float64          `json:"cost,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	BillingCycle   string            `json:"billing_cycle,omitempty"`
	LastActivityAt *time.Time        `json:"last_activity_at,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type staticConfig struct {
	Records []staticRecord `json:"records"`
}

// StaticProvider serves seat records straight from the vendor's stored
// config. Used for demos and for exercising the pipeline without a live
// vendor API.
type StaticProvider struct {
	records []RawRecord
	logger  zerolog.Logger
}

// NewStaticProvider builds a StaticProvider from vendor config JSON.
func NewStaticProvider(vendor *models.Vendor, logger zerolog.Logger) (Provider, error) {
	var cfg staticConfig
	if len(vendor.Config) > 0 {
		if err := json.Unmarshal(vendor.Config, &cfg); err != nil {
			return nil, fmt.Errorf("parse static provider config: %w", err)
		}
	}

	records := make([]RawRecord, 0, len(cfg.Records))
	for _, r := range cfg.Records {
		status := models.LicenseStatus(r.Status)
		if !models.ValidLicenseStatus(r.Status) {
			status = models.LicenseStatusActive
		}
		records = append(records, RawRecord{
			ExternalID:     r.ExternalID,
			Email:          r.Email,
			DisplayName:    r.DisplayName,
			LicenseType:    r.LicenseType,
			Status:         status,
			Cost:           r.Cost,
			Currency:       r.Currency,
			BillingCycle:   models.BillingCycle(r.BillingCycle),
			LastActivityAt: r.LastActivityAt,
			Metadata:       r.Metadata,
		})
	}

	return &StaticProvider{
		records: records,
		logger:  logger.With().Str("component", "static_provider").Logger(),
	}, nil
}

// Type returns the vendor type this provider serves.
func (p *StaticProvider) Type() models.VendorType {
	return models.VendorTypeStatic
}

// FetchLicenses returns the configured records.
func (p *StaticProvider) FetchLicenses(_ context.Context) ([]RawRecord, error) {
	out := make([]RawRecord, len(p.records))
	copy(out, p.records)
	return out, nil
}
