package handlers

import (
	"context"
	"net/http"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PatternStore defines the interface for matching-rule persistence.
type PatternStore interface {
	CreateServiceAccountPattern(ctx context.Context, p *models.ServiceAccountPattern) error
	ListServiceAccountPatterns(ctx context.Context) ([]*models.ServiceAccountPattern, error)
	CreateAdminAccountPattern(ctx context.Context, p *models.AdminAccountPattern) error
	ListAdminAccountPatterns(ctx context.Context) ([]*models.AdminAccountPattern, error)
	CreateLicenseTypeRule(ctx context.Context, r *models.LicenseTypeRule) error
	ListLicenseTypeRules(ctx context.Context) ([]*models.LicenseTypeRule, error)
	CreateExternalAccountMapping(ctx context.Context, m *models.ExternalAccountMapping) error
	ListExternalAccountMappings(ctx context.Context, vendorType models.VendorType) ([]*models.ExternalAccountMapping, error)
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// PatternsHandler handles matching-rule HTTP endpoints: service and admin
// account patterns, license-type rules, and external account links.
type PatternsHandler struct {
	store  PatternStore
	logger zerolog.Logger
}

// NewPatternsHandler creates a new PatternsHandler.
func NewPatternsHandler(store PatternStore, logger zerolog.Logger) *PatternsHandler {
	return &PatternsHandler{
		store:  store,
		logger: logger.With().Str("component", "patterns_handler").Logger(),
	}
}

// RegisterRoutes registers matching-rule routes on the given router group.
func (h *PatternsHandler) RegisterRoutes(r *gin.RouterGroup) {
	patterns := r.Group("/patterns")
	{
		patterns.GET("/service-accounts", h.ListServicePatterns)
		patterns.POST("/service-accounts", h.CreateServicePattern)
		patterns.GET("/admin-accounts", h.ListAdminPatterns)
		patterns.POST("/admin-accounts", h.CreateAdminPattern)
		patterns.GET("/license-types", h.ListLicenseTypeRules)
		patterns.POST("/license-types", h.CreateLicenseTypeRule)
	}

	external := r.Group("/external-accounts")
	{
		external.GET("", h.ListExternalAccounts)
		external.POST("", h.CreateExternalAccount)
	}
}

// CreatePatternRequest is the request body for creating a service- or
// admin-account pattern.
type CreatePatternRequest struct {
	Pattern     string     `json:"pattern" binding:"required,min=1,max=255"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
}

// CreateLicenseTypeRuleRequest is the request body for creating a
// license-type rule.
type CreateLicenseTypeRuleRequest struct {
	LicenseType string     `json:"license_type" binding:"required,min=1,max=255"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
}

// CreateExternalAccountRequest is the request body for linking a
// vendor-native username to an employee.
type CreateExternalAccountRequest struct {
	VendorType       string    `json:"vendor_type" binding:"required"`
	ExternalUsername string    `json:"external_username" binding:"required,min=1,max=255"`
	EmployeeID       uuid.UUID `json:"employee_id" binding:"required"`
}

func (h *PatternsHandler) checkOwner(c *gin.Context, ownerID *uuid.UUID) bool {
	if ownerID == nil {
		return true
	}
	if _, err := h.store.GetEmployeeByID(c.Request.Context(), *ownerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner not found"})
		return false
	}
	return true
}

// ListServicePatterns returns all service-account patterns.
// GET /api/v1/patterns/service-accounts
func (h *PatternsHandler) ListServicePatterns(c *gin.Context) {
	patterns, err := h.store.ListServiceAccountPatterns(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list service account patterns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list patterns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}

// CreateServicePattern creates a service-account pattern.
// POST /api/v1/patterns/service-accounts
func (h *PatternsHandler) CreateServicePattern(c *gin.Context) {
	var req CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkOwner(c, req.OwnerID) {
		return
	}

	pattern := models.NewServiceAccountPattern(req.Pattern, req.OwnerID, req.DisplayName)
	if err := h.store.CreateServiceAccountPattern(c.Request.Context(), pattern); err != nil {
		h.logger.Error().Err(err).Str("pattern", req.Pattern).Msg("failed to create service account pattern")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pattern"})
		return
	}
	c.JSON(http.StatusCreated, pattern)
}

// ListAdminPatterns returns all admin-account patterns.
// GET /api/v1/patterns/admin-accounts
func (h *PatternsHandler) ListAdminPatterns(c *gin.Context) {
	patterns, err := h.store.ListAdminAccountPatterns(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list admin account patterns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list patterns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": patterns})
}

// CreateAdminPattern creates an admin-account pattern.
// POST /api/v1/patterns/admin-accounts
func (h *PatternsHandler) CreateAdminPattern(c *gin.Context) {
	var req CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkOwner(c, req.OwnerID) {
		return
	}

	pattern := models.NewAdminAccountPattern(req.Pattern, req.OwnerID, req.DisplayName)
	if err := h.store.CreateAdminAccountPattern(c.Request.Context(), pattern); err != nil {
		h.logger.Error().Err(err).Str("pattern", req.Pattern).Msg("failed to create admin account pattern")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pattern"})
		return
	}
	c.JSON(http.StatusCreated, pattern)
}

// ListLicenseTypeRules returns all license-type rules.
// GET /api/v1/patterns/license-types
func (h *PatternsHandler) ListLicenseTypeRules(c *gin.Context) {
	rules, err := h.store.ListLicenseTypeRules(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list license type rules")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// CreateLicenseTypeRule creates a license-type rule.
// POST /api/v1/patterns/license-types
func (h *PatternsHandler) CreateLicenseTypeRule(c *gin.Context) {
	var req CreateLicenseTypeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkOwner(c, req.OwnerID) {
		return
	}

	rule := models.NewLicenseTypeRule(req.LicenseType, req.OwnerID)
	if err := h.store.CreateLicenseTypeRule(c.Request.Context(), rule); err != nil {
		h.logger.Error().Err(err).Str("license_type", req.LicenseType).Msg("failed to create license type rule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListExternalAccounts returns external account links, optionally filtered
// by vendor_type.
// GET /api/v1/external-accounts
func (h *PatternsHandler) ListExternalAccounts(c *gin.Context) {
	vendorType := c.Query("vendor_type")
	if vendorType != "" && !models.ValidVendorType(vendorType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_type"})
		return
	}

	mappings, err := h.store.ListExternalAccountMappings(c.Request.Context(), models.VendorType(vendorType))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list external account mappings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list external accounts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"external_accounts": mappings})
}

// CreateExternalAccount links a vendor-native username to an employee.
// POST /api/v1/external-accounts
func (h *PatternsHandler) CreateExternalAccount(c *gin.Context) {
	var req CreateExternalAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidVendorType(req.VendorType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor_type"})
		return
	}
	if _, err := h.store.GetEmployeeByID(c.Request.Context(), req.EmployeeID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee not found"})
		return
	}

	mapping := models.NewExternalAccountMapping(models.VendorType(req.VendorType), req.ExternalUsername, req.EmployeeID)
	if err := h.store.CreateExternalAccountMapping(c.Request.Context(), mapping); err != nil {
		h.logger.Error().Err(err).Str("username", req.ExternalUsername).Msg("failed to create external account mapping")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create external account"})
		return
	}
	c.JSON(http.StatusCreated, mapping)
}
