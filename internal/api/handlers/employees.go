package handlers

import (
	"context"
	"net/http"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmployeeStore defines the interface for employee persistence operations.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]*models.Employee, error)
}

// EmployeesHandler handles employee-related HTTP endpoints.
type EmployeesHandler struct {
	store  EmployeeStore
	logger zerolog.Logger
}

// NewEmployeesHandler creates a new EmployeesHandler.
func NewEmployeesHandler(store EmployeeStore, logger zerolog.Logger) *EmployeesHandler {
	return &EmployeesHandler{
		store:  store,
		logger: logger.With().Str("component", "employees_handler").Logger(),
	}
}

// RegisterRoutes registers employee routes on the given router group.
func (h *EmployeesHandler) RegisterRoutes(r *gin.RouterGroup) {
	employees := r.Group("/employees")
	{
		employees.GET("", h.List)
		employees.POST("", h.Create)
		employees.GET("/:id", h.Get)
	}
}

// CreateEmployeeRequest is the request body for creating an employee.
type CreateEmployeeRequest struct {
	Email        string `json:"email" binding:"required,email"`
	DisplayName  string `json:"display_name" binding:"required,min=1,max=255"`
	Department   string `json:"department,omitempty"`
	SourceSystem string `json:"source_system,omitempty"`
}

// List returns all employees in the directory.
// GET /api/v1/employees
func (h *EmployeesHandler) List(c *gin.Context) {
	employees, err := h.store.ListEmployees(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list employees")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list employees"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

// Get returns a specific employee by ID.
// GET /api/v1/employees/:id
func (h *EmployeesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	employee, err := h.store.GetEmployeeByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	c.JSON(http.StatusOK, employee)
}

// Create creates a new employee record.
// POST /api/v1/employees
func (h *EmployeesHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee := models.NewEmployee(req.Email, req.DisplayName, req.Department, req.SourceSystem)
	if err := h.store.CreateEmployee(c.Request.Context(), employee); err != nil {
		h.logger.Error().Err(err).Str("email", employee.Email).Msg("failed to create employee")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create employee"})
		return
	}

	c.JSON(http.StatusCreated, employee)
}
