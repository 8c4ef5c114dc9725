package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/directory"
	"github.com/Kiefer-Networks/licence-manager/internal/matching"
	"github.com/Kiefer-Networks/licence-manager/internal/metrics"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/Kiefer-Networks/licence-manager/internal/providers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceStore is the full persistence surface a reconciliation run needs:
// the coordinator's transactional methods plus vendor, sync-run, employee,
// and rule-registry loading. *db.DB satisfies it.
type ServiceStore interface {
	Store
	matching.RegistryStore

	ListEnabledVendors(ctx context.Context) ([]*models.Vendor, error)
	GetVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	UpdateVendorLastSynced(ctx context.Context, id uuid.UUID, syncedAt time.Time) error
	ListEmployees(ctx context.Context) ([]*models.Employee, error)
	CreateSyncRun(ctx context.Context, r *models.SyncRun) error
	UpdateSyncRun(ctx context.Context, r *models.SyncRun) error
	CountLicensesNeedingReview(ctx context.Context) (int, error)
}

// ProviderFactory builds the adapter for one vendor. Overridable in tests.
type ProviderFactory func(vendor *models.Vendor) (providers.Provider, error)

// Result is the outcome of one vendor's reconciliation within a run.
type Result struct {
	VendorID   uuid.UUID `json:"vendor_id"`
	VendorName string    `json:"vendor_name"`
	Counts     Counts    `json:"counts"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the vendor's run ended in an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// ServiceConfig holds tunables for the reconciliation service.
type ServiceConfig struct {
	// Workers bounds how many vendors reconcile concurrently. Vendor API
	// calls are I/O-bound, so a few in flight at once is the normal case.
	Workers int
}

// DefaultServiceConfig returns a ServiceConfig with sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{Workers: 4}
}

// Service runs reconciliation across vendors: shared snapshots loaded once
// per run, per-vendor locking, bounded concurrency, isolated failures.
type Service struct {
	store       ServiceStore
	coordinator *Coordinator
	factory     ProviderFactory
	metrics     *metrics.Metrics
	locks       *vendorLocks
	config      ServiceConfig
	logger      zerolog.Logger
}

// NewService creates a reconciliation Service. The metrics parameter is
// optional and may be nil.
func NewService(store ServiceStore, coordinator *Coordinator, config ServiceConfig, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if config.Workers <= 0 {
		config.Workers = DefaultServiceConfig().Workers
	}
	svc := &Service{
		store:       store,
		coordinator: coordinator,
		metrics:     m,
		locks:       newVendorLocks(),
		config:      config,
		logger:      logger.With().Str("component", "reconcile_service").Logger(),
	}
	svc.factory = func(vendor *models.Vendor) (providers.Provider, error) {
		return providers.New(vendor, logger)
	}
	return svc
}

// SetProviderFactory overrides how vendor adapters are built.
func (s *Service) SetProviderFactory(factory ProviderFactory) {
	s.factory = factory
}

// ReconcileAll reconciles every enabled vendor. One vendor's failure never
// blocks or aborts another's; each result reports its own outcome.
func (s *Service) ReconcileAll(ctx context.Context) ([]Result, error) {
	vendors, err := s.store.ListEnabledVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled vendors: %w", err)
	}
	return s.reconcileVendors(ctx, vendors)
}

// ReconcileVendor reconciles a single vendor by ID, enabled or not.
func (s *Service) ReconcileVendor(ctx context.Context, vendorID uuid.UUID) (Result, error) {
	vendor, err := s.store.GetVendorByID(ctx, vendorID)
	if err != nil {
		return Result{}, fmt.Errorf("load vendor: %w", err)
	}
	results, err := s.reconcileVendors(ctx, []*models.Vendor{vendor})
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

func (s *Service) reconcileVendors(ctx context.Context, vendors []*models.Vendor) ([]Result, error) {
	if len(vendors) == 0 {
		return nil, nil
	}

	// One directory snapshot is shared read-only across all vendors in
	// the run.
	dir, err := directory.Load(ctx, s.store)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(vendors))
	sem := make(chan struct{}, s.config.Workers)
	var wg sync.WaitGroup

	for i, vendor := range vendors {
		// Aborting the run stops vendors that have not started; vendors
		// already committed keep their results.
		if ctx.Err() != nil {
			results[i] = Result{VendorID: vendor.ID, VendorName: vendor.Name, Error: ctx.Err().Error()}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, vendor *models.Vendor) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.runVendor(ctx, vendor, dir)
		}(i, vendor)
	}
	wg.Wait()

	s.updateReviewGauge(ctx)
	return results, nil
}

// runVendor executes one vendor's fetch-and-reconcile under the vendor
// lock, recording a SyncRun row either way.
func (s *Service) runVendor(ctx context.Context, vendor *models.Vendor, dir *directory.Snapshot) Result {
	result := Result{VendorID: vendor.ID, VendorName: vendor.Name}
	logger := s.logger.With().Str("vendor", vendor.Name).Logger()

	if !s.locks.tryAcquire(vendor.ID) {
		result.Error = ErrVendorBusy.Error()
		logger.Warn().Msg("vendor reconciliation already in flight, skipping")
		return result
	}
	defer s.locks.release(vendor.ID)

	run := models.NewSyncRun(vendor.ID)
	if err := s.store.CreateSyncRun(ctx, run); err != nil {
		result.Error = err.Error()
		logger.Error().Err(err).Msg("failed to record sync run")
		return result
	}

	counts, err := s.fetchAndReconcile(ctx, vendor, dir)
	duration := time.Since(run.StartedAt)

	if err != nil {
		run.Fail(err.Error())
		result.Error = err.Error()
		logger.Error().Err(err).Dur("duration", duration).Msg("vendor reconciliation failed")
		s.observeRun(vendor.Name, "failed", counts, duration)
	} else {
		run.Complete(counts.Created, counts.Updated, counts.Expired, counts.NeedsReview, counts.Skipped)
		result.Counts = counts
		logger.Info().
			Int("created", counts.Created).
			Int("updated", counts.Updated).
			Int("expired", counts.Expired).
			Int("needs_review", counts.NeedsReview).
			Int("skipped", counts.Skipped).
			Dur("duration", duration).
			Msg("vendor reconciliation complete")
		s.observeRun(vendor.Name, "completed", counts, duration)

		if err := s.store.UpdateVendorLastSynced(ctx, vendor.ID, time.Now()); err != nil {
			logger.Error().Err(err).Msg("failed to update vendor last synced")
		}
	}

	if err := s.store.UpdateSyncRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("failed to finalize sync run")
	}

	return result
}

func (s *Service) fetchAndReconcile(ctx context.Context, vendor *models.Vendor, dir *directory.Snapshot) (Counts, error) {
	provider, err := s.factory(vendor)
	if err != nil {
		return Counts{}, fmt.Errorf("build provider: %w", err)
	}

	records, err := provider.FetchLicenses(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("fetch licenses: %w", err)
	}

	registry, err := matching.LoadRegistry(ctx, s.store, vendor.Type)
	if err != nil {
		return Counts{}, err
	}

	return s.coordinator.ReconcileVendor(ctx, vendor, records, dir, registry)
}

func (s *Service) observeRun(vendor, status string, counts Counts, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRun(vendor, status, counts.Created, counts.Updated, counts.Expired, counts.Skipped, duration)
}

func (s *Service) updateReviewGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	count, err := s.store.CountLicensesNeedingReview(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count licenses needing review")
		return
	}
	s.metrics.SetNeedsReview(count)
}
