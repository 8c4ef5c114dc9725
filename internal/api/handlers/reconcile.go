package handlers

import (
	"context"
	"net/http"

	"github.com/Kiefer-Networks/licence-manager/internal/reconcile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reconciler triggers reconciliation runs.
type Reconciler interface {
	ReconcileAll(ctx context.Context) ([]reconcile.Result, error)
	ReconcileVendor(ctx context.Context, vendorID uuid.UUID) (reconcile.Result, error)
}

// ReconcileHandler handles reconciliation trigger endpoints.
type ReconcileHandler struct {
	service Reconciler
	logger  zerolog.Logger
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(service Reconciler, logger zerolog.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		service: service,
		logger:  logger.With().Str("component", "reconcile_handler").Logger(),
	}
}

// RegisterRoutes registers reconciliation routes on the given router group.
func (h *ReconcileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reconcile", h.RunAll)
	r.POST("/vendors/:id/reconcile", h.RunVendor)
}

// RunAll reconciles every enabled vendor and returns per-vendor results.
// POST /api/v1/reconcile
func (h *ReconcileHandler) RunAll(c *gin.Context) {
	results, err := h.service.ReconcileAll(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("reconciliation run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// RunVendor reconciles a single vendor.
// POST /api/v1/vendors/:id/reconcile
func (h *ReconcileHandler) RunVendor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor id"})
		return
	}

	result, err := h.service.ReconcileVendor(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("vendor_id", id.String()).Msg("vendor reconciliation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	if result.Error == reconcile.ErrVendorBusy.Error() {
		c.JSON(http.StatusConflict, gin.H{"error": result.Error})
		return
	}

	c.JSON(http.StatusOK, result)
}
