package handlers

import (
	"context"
	"net/http"

	"github.com/Kiefer-Networks/licence-manager/internal/db"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LicenseStore defines the interface for license persistence operations.
type LicenseStore interface {
	GetLicenseByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	ListLicenses(ctx context.Context, filter db.LicenseFilter) ([]*models.License, error)
	ConfirmLicenseMatch(ctx context.Context, id, employeeID uuid.UUID) error
	RejectLicenseMatch(ctx context.Context, id uuid.UUID) error
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// LicensesHandler handles license-related HTTP endpoints.
type LicensesHandler struct {
	store  LicenseStore
	logger zerolog.Logger
}

// NewLicensesHandler creates a new LicensesHandler.
func NewLicensesHandler(store LicenseStore, logger zerolog.Logger) *LicensesHandler {
	return &LicensesHandler{
		store:  store,
		logger: logger.With().Str("component", "licenses_handler").Logger(),
	}
}

// RegisterRoutes registers license routes on the given router group.
func (h *LicensesHandler) RegisterRoutes(r *gin.RouterGroup) {
	licenses := r.Group("/licenses")
	{
		licenses.GET("", h.List)
		licenses.GET("/:id", h.Get)
		licenses.POST("/:id/confirm", h.Confirm)
		licenses.POST("/:id/reject", h.Reject)
	}
}

// ConfirmMatchRequest is the request body for confirming a license match.
type ConfirmMatchRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
}

// List returns licenses, optionally filtered by vendor, status, match
// status, or the needs_review shorthand.
// GET /api/v1/licenses
func (h *LicensesHandler) List(c *gin.Context) {
	var filter db.LicenseFilter

	if raw := c.Query("vendor_id"); raw != "" {
		vendorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_id"})
			return
		}
		filter.VendorID = &vendorID
	}
	if raw := c.Query("status"); raw != "" {
		if !models.ValidLicenseStatus(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = models.LicenseStatus(raw)
	}
	if raw := c.Query("match_status"); raw != "" {
		if !models.ValidMatchStatus(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match_status"})
			return
		}
		matchStatus := models.MatchStatus(raw)
		filter.MatchStatus = &matchStatus
	}
	filter.NeedsReview = c.Query("needs_review") == "true"

	licenses, err := h.store.ListLicenses(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list licenses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list licenses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"licenses": licenses})
}

// Get returns a specific license by ID.
// GET /api/v1/licenses/:id
func (h *LicensesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid license id"})
		return
	}

	license, err := h.store.GetLicenseByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "license not found"})
		return
	}

	c.JSON(http.StatusOK, license)
}

// Confirm records a reviewer confirming which employee a license belongs
// to. Confirmed assignments survive subsequent reconciliation runs.
// POST /api/v1/licenses/:id/confirm
func (h *LicensesHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid license id"})
		return
	}

	var req ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.GetLicenseByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "license not found"})
		return
	}
	if _, err := h.store.GetEmployeeByID(c.Request.Context(), req.EmployeeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee not found"})
		return
	}

	if err := h.store.ConfirmLicenseMatch(c.Request.Context(), id, req.EmployeeID); err != nil {
		h.logger.Error().Err(err).Str("license_id", id.String()).Msg("failed to confirm license match")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm license match"})
		return
	}

	h.logger.Info().
		Str("license_id", id.String()).
		Str("employee_id", req.EmployeeID.String()).
		Msg("license match confirmed")

	license, err := h.store.GetLicenseByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload license"})
		return
	}
	c.JSON(http.StatusOK, license)
}

// Reject records a reviewer rejecting a suggested match. Rejected rows
// are never re-suggested by the matching engine.
// POST /api/v1/licenses/:id/reject
func (h *LicensesHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid license id"})
		return
	}

	if _, err := h.store.GetLicenseByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "license not found"})
		return
	}

	if err := h.store.RejectLicenseMatch(c.Request.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("license_id", id.String()).Msg("failed to reject license match")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject license match"})
		return
	}

	h.logger.Info().Str("license_id", id.String()).Msg("license match rejected")

	license, err := h.store.GetLicenseByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload license"})
		return
	}
	c.JSON(http.StatusOK, license)
}
