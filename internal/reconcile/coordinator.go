// Package reconcile merges freshly fetched vendor seat records into
// persisted license state: one transaction per vendor per run, reviewer
// decisions preserved, disappearances expired rather than deleted.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/costs"
	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/matching"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/Kiefer-Networks/licence-manager/internal/providers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrVendorBusy is returned when another reconciliation run already holds
// the vendor's lock.
var ErrVendorBusy = errors.New("vendor reconciliation already in progress")

// Counts summarizes what one vendor's reconciliation changed.
type Counts struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Expired     int `json:"expired"`
	NeedsReview int `json:"needs_review"`
	Skipped     int `json:"skipped"`
}

// Store is the transactional persistence surface the coordinator uses.
// *db.DB satisfies it.
type Store interface {
	ExecTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	TryVendorLockTx(ctx context.Context, tx pgx.Tx, vendorID uuid.UUID) (bool, error)
	GetLicensesByVendorTx(ctx context.Context, tx pgx.Tx, vendorID uuid.UUID) (map[string]*models.License, error)
	CreateLicenseTx(ctx context.Context, tx pgx.Tx, l *models.License) error
	UpdateLicenseTx(ctx context.Context, tx pgx.Tx, l *models.License) error
}

// Coordinator diffs one vendor's fetched records against persisted state
// and commits the result atomically.
type Coordinator struct {
	store      Store
	normalizer *costs.Normalizer
	matchCfg   matching.Config
	logger     zerolog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(store Store, normalizer *costs.Normalizer, matchCfg matching.Config, logger zerolog.Logger) *Coordinator {
	if normalizer == nil {
		normalizer = costs.NewNormalizer()
	}
	return &Coordinator{
		store:      store,
		normalizer: normalizer,
		matchCfg:   matchCfg,
		logger:     logger.With().Str("component", "reconcile_coordinator").Logger(),
	}
}

// ReconcileVendor merges the fetched records into the vendor's persisted
// licenses inside a single transaction. Either the whole diff lands or
// none of it does; a database-level advisory lock keeps two processes from
// reconciling the same vendor at once.
func (c *Coordinator) ReconcileVendor(
	ctx context.Context,
	vendor *models.Vendor,
	records []providers.RawRecord,
	dir *directory.Snapshot,
	reg *matching.Registry,
) (Counts, error) {
	var counts Counts

	err := c.store.ExecTx(ctx, func(tx pgx.Tx) error {
		locked, err := c.store.TryVendorLockTx(ctx, tx, vendor.ID)
		if err != nil {
			return err
		}
		if !locked {
			return ErrVendorBusy
		}

		existing, err := c.store.GetLicensesByVendorTx(ctx, tx, vendor.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		seen := make(map[string]struct{}, len(records))

		for _, record := range records {
			if record.ExternalID == "" {
				// Malformed upstream record: skip and count, never fail
				// the run over it.
				counts.Skipped++
				c.logger.Warn().
					Str("vendor", vendor.Name).
					Str("email", record.Email).
					Msg("skipping record with missing external ID")
				continue
			}
			if _, dup := seen[record.ExternalID]; dup {
				counts.Skipped++
				continue
			}
			seen[record.ExternalID] = struct{}{}

			license, exists := existing[record.ExternalID]
			if !exists {
				created, err := c.createLicense(ctx, tx, vendor, record, dir, reg, now)
				if err != nil {
					return err
				}
				counts.Created++
				if created.NeedsReview() {
					counts.NeedsReview++
				}
				continue
			}

			changed, err := c.updateLicense(ctx, tx, vendor, license, record, dir, reg, now)
			if err != nil {
				return err
			}
			if changed {
				counts.Updated++
			}
			if license.NeedsReview() {
				counts.NeedsReview++
			}
		}

		// Anything persisted but absent from this fetch has left the
		// vendor: expire it, keep the row and its cost history.
		for externalID, license := range existing {
			if _, ok := seen[externalID]; ok {
				continue
			}
			if license.Terminal() {
				continue
			}
			license.Status = models.LicenseStatusExpired
			license.SyncedAt = now
			license.UpdatedAt = now
			if err := c.store.UpdateLicenseTx(ctx, tx, license); err != nil {
				return err
			}
			counts.Expired++
		}

		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("reconcile vendor %s: %w", vendor.Name, err)
	}

	return counts, nil
}

// createLicense builds, classifies, prices, and persists a first-sighting
// license row.
func (c *Coordinator) createLicense(
	ctx context.Context,
	tx pgx.Tx,
	vendor *models.Vendor,
	record providers.RawRecord,
	dir *directory.Snapshot,
	reg *matching.Registry,
	now time.Time,
) (*models.License, error) {
	license := models.NewLicense(vendor.ID, record.ExternalID)
	license.SyncedAt = now
	license.CreatedAt = now
	license.UpdatedAt = now

	applyMutableFields(license, vendor, record, c.normalizer)
	applyClassification(license, matching.Classify(record, dir, reg, c.matchCfg))

	if err := c.store.CreateLicenseTx(ctx, tx, license); err != nil {
		return nil, err
	}
	return license, nil
}

// updateLicense applies mutable fields and, unless a reviewer has locked
// the row, re-runs classification. Returns true when a material field
// changed and the row was written.
func (c *Coordinator) updateLicense(
	ctx context.Context,
	tx pgx.Tx,
	vendor *models.Vendor,
	license *models.License,
	record providers.RawRecord,
	dir *directory.Snapshot,
	reg *matching.Registry,
	now time.Time,
) (bool, error) {
	before := materialState(license)
	metadataBefore := license.Metadata

	applyMutableFields(license, vendor, record, c.normalizer)

	// Reviewer decisions are final: confirmed/rejected rows never get
	// re-matched, whatever upstream or the pattern registries now say.
	if !license.ReviewLocked() {
		applyClassification(license, matching.Classify(record, dir, reg, c.matchCfg))
	}

	if before == materialState(license) && metadataEqual(metadataBefore, license.Metadata) {
		return false, nil
	}

	license.SyncedAt = now
	license.UpdatedAt = now
	if err := c.store.UpdateLicenseTx(ctx, tx, license); err != nil {
		return false, err
	}
	return true, nil
}

// applyMutableFields copies the operationally mutable fields from a raw
// record onto a license. These update on every sighting regardless of
// review state.
func applyMutableFields(license *models.License, vendor *models.Vendor, record providers.RawRecord, normalizer *costs.Normalizer) {
	license.Email = record.Email
	license.DisplayName = record.DisplayName
	license.LicenseType = costs.NormalizeLicenseType(record.LicenseType)
	license.Status = record.Status
	license.LastActivityAt = record.LastActivityAt
	license.Metadata = record.Metadata

	license.MonthlyCost = normalizer.RecordMonthlyCost(record.Cost, record.BillingCycle, vendor.BillingCycle, record.LicenseType)
	license.Currency = record.Currency
	if license.Currency == "" {
		license.Currency = vendor.Currency
	}
}

// applyClassification writes an engine decision onto a license. Service
// and admin attributions leave the matching fields untouched; everything
// else overwrites the previous suggestion.
func applyClassification(license *models.License, cls matching.Classification) {
	license.IsServiceAccount = cls.IsServiceAccount
	license.ServiceAccountOwnerID = cls.ServiceAccountOwnerID
	license.IsAdminAccount = cls.IsAdminAccount
	license.AdminAccountOwnerID = cls.AdminAccountOwnerID

	if cls.ServiceOrAdmin() {
		return
	}

	license.IsExternalEmail = cls.IsExternalEmail
	license.EmployeeID = cls.EmployeeID
	license.SuggestedEmployeeID = cls.SuggestedEmployeeID
	license.MatchConfidence = cls.MatchConfidence
	license.MatchStatus = cls.MatchStatus
	license.MatchMethod = cls.MatchMethod
}

// material is a comparable snapshot of every field whose change counts as
// a write. synced_at deliberately excluded: advancing it alone is not a
// material update.
type material struct {
	email           string
	displayName     string
	licenseType     string
	status          models.LicenseStatus
	employeeID      uuid.UUID
	isService       bool
	serviceOwnerID  uuid.UUID
	isAdmin         bool
	adminOwnerID    uuid.UUID
	isExternal      bool
	suggestedID     uuid.UUID
	matchConfidence float64
	matchStatus     models.MatchStatus
	matchMethod     models.MatchMethod
	monthlyCost     float64
	currency        string
	lastActivity    int64
}

func materialState(l *models.License) material {
	return material{
		email:           l.Email,
		displayName:     l.DisplayName,
		licenseType:     l.LicenseType,
		status:          l.Status,
		employeeID:      uuidValue(l.EmployeeID),
		isService:       l.IsServiceAccount,
		serviceOwnerID:  uuidValue(l.ServiceAccountOwnerID),
		isAdmin:         l.IsAdminAccount,
		adminOwnerID:    uuidValue(l.AdminAccountOwnerID),
		isExternal:      l.IsExternalEmail,
		suggestedID:     uuidValue(l.SuggestedEmployeeID),
		matchConfidence: l.MatchConfidence,
		matchStatus:     l.MatchStatus,
		matchMethod:     l.MatchMethod,
		monthlyCost:     l.MonthlyCost,
		currency:        l.Currency,
		lastActivity:    timeValue(l.LastActivityAt),
	}
}

func uuidValue(p *uuid.UUID) uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return *p
}

func timeValue(p *time.Time) int64 {
	if p == nil {
		return 0
	}
	return p.UnixNano()
}

func metadataEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
