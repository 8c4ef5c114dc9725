package handlers

import (
	"context"
	"net/http"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatsStore defines the interface for spend and review statistics.
type StatsStore interface {
	ListVendors(ctx context.Context) ([]*models.Vendor, error)
	ActiveMonthlyCostByVendor(ctx context.Context) (map[uuid.UUID]float64, error)
	CountLicensesNeedingReview(ctx context.Context) (int, error)
}

// StatsHandler handles spend summary HTTP endpoints.
type StatsHandler struct {
	store  StatsStore
	logger zerolog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store StatsStore, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		store:  store,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// RegisterRoutes registers stats routes on the given router group.
func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/costs", h.Costs)
	}
}

// VendorCost is one vendor's normalized monthly spend for active seats.
type VendorCost struct {
	VendorID    uuid.UUID `json:"vendor_id"`
	VendorName  string    `json:"vendor_name"`
	Currency    string    `json:"currency"`
	MonthlyCost float64   `json:"monthly_cost"`
}

// Costs returns per-vendor normalized monthly spend plus the count of
// licenses waiting on review.
// GET /api/v1/stats/costs
func (h *StatsHandler) Costs(c *gin.Context) {
	ctx := c.Request.Context()

	vendors, err := h.store.ListVendors(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list vendors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute costs"})
		return
	}

	costs, err := h.store.ActiveMonthlyCostByVendor(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute monthly costs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute costs"})
		return
	}

	needsReview, err := h.store.CountLicensesNeedingReview(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count licenses needing review")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute costs"})
		return
	}

	var total float64
	vendorCosts := make([]VendorCost, 0, len(vendors))
	for _, v := range vendors {
		cost := costs[v.ID]
		total += cost
		vendorCosts = append(vendorCosts, VendorCost{
			VendorID:    v.ID,
			VendorName:  v.Name,
			Currency:    v.Currency,
			MonthlyCost: cost,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"vendors":       vendorCosts,
		"total_monthly": total,
		"needs_review":  needsReview,
	})
}
