package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VendorStore defines the interface for vendor persistence operations.
type VendorStore interface {
	CreateVendor(ctx context.Context, v *models.Vendor) error
	GetVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]*models.Vendor, error)
	UpdateVendor(ctx context.Context, v *models.Vendor) error
	ListSyncRuns(ctx context.Context, vendorID uuid.UUID, limit int) ([]*models.SyncRun, error)
}

// VendorsHandler handles vendor-related HTTP endpoints.
type VendorsHandler struct {
	store  VendorStore
	logger zerolog.Logger
}

// NewVendorsHandler creates a new VendorsHandler.
func NewVendorsHandler(store VendorStore, logger zerolog.Logger) *VendorsHandler {
	return &VendorsHandler{
		store:  store,
		logger: logger.With().Str("component", "vendors_handler").Logger(),
	}
}

// RegisterRoutes registers vendor routes on the given router group.
func (h *VendorsHandler) RegisterRoutes(r *gin.RouterGroup) {
	vendors := r.Group("/vendors")
	{
		vendors.GET("", h.List)
		vendors.POST("", h.Create)
		vendors.GET("/:id", h.Get)
		vendors.PUT("/:id", h.Update)
		vendors.GET("/:id/runs", h.Runs)
	}
}

// CreateVendorRequest is the request body for creating a vendor.
type CreateVendorRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=255"`
	Type         string          `json:"type" binding:"required"`
	Currency     string          `json:"currency,omitempty"`
	BillingCycle string          `json:"billing_cycle,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// UpdateVendorRequest is the request body for updating a vendor.
type UpdateVendorRequest struct {
	Name         string          `json:"name,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	BillingCycle string          `json:"billing_cycle,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// List returns all configured vendors.
// GET /api/v1/vendors
func (h *VendorsHandler) List(c *gin.Context) {
	vendors, err := h.store.ListVendors(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list vendors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vendors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// Get returns a specific vendor by ID.
// GET /api/v1/vendors/:id
func (h *VendorsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	vendor, err := h.store.GetVendorByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// Create creates a new vendor.
// POST /api/v1/vendors
func (h *VendorsHandler) Create(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidVendorType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor type"})
		return
	}
	if req.BillingCycle != "" && !models.ValidBillingCycle(req.BillingCycle) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing cycle"})
		return
	}

	vendor := models.NewVendor(req.Name, models.VendorType(req.Type))
	if req.Currency != "" {
		vendor.Currency = req.Currency
	}
	if req.BillingCycle != "" {
		vendor.BillingCycle = models.BillingCycle(req.BillingCycle)
	}
	if len(req.Config) > 0 {
		vendor.Config = req.Config
	}
	if req.Enabled != nil {
		vendor.Enabled = *req.Enabled
	}

	if err := h.store.CreateVendor(c.Request.Context(), vendor); err != nil {
		h.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create vendor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vendor"})
		return
	}

	h.logger.Info().Str("vendor_id", vendor.ID.String()).Str("name", vendor.Name).Msg("vendor created")
	c.JSON(http.StatusCreated, vendor)
}

// Update updates a vendor's settings.
// PUT /api/v1/vendors/:id
func (h *VendorsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.store.GetVendorByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vendor not found"})
		return
	}

	if req.Name != "" {
		vendor.Name = req.Name
	}
	if req.Currency != "" {
		vendor.Currency = req.Currency
	}
	if req.BillingCycle != "" {
		if !models.ValidBillingCycle(req.BillingCycle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid billing cycle"})
			return
		}
		vendor.BillingCycle = models.BillingCycle(req.BillingCycle)
	}
	if len(req.Config) > 0 {
		vendor.Config = req.Config
	}
	if req.Enabled != nil {
		vendor.Enabled = *req.Enabled
	}
	vendor.UpdatedAt = time.Now()

	if err := h.store.UpdateVendor(c.Request.Context(), vendor); err != nil {
		h.logger.Error().Err(err).Str("vendor_id", id.String()).Msg("failed to update vendor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update vendor"})
		return
	}

	c.JSON(http.StatusOK, vendor)
}

// Runs returns recent reconciliation runs for a vendor, newest first.
// GET /api/v1/vendors/:id/runs
func (h *VendorsHandler) Runs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	limit := parseLimit(c.Query("limit"), 50)

	runs, err := h.store.ListSyncRuns(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("vendor_id", id.String()).Msg("failed to list sync runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sync runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
