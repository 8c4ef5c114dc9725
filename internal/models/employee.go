package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmploymentStatus represents an employee's employment state in the directory.
type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusOffboarded EmploymentStatus = "offboarded"
)

// ValidEmploymentStatus checks if a status string is a known employment status.
func ValidEmploymentStatus(s string) bool {
	switch EmploymentStatus(s) {
	case EmploymentStatusActive, EmploymentStatusOffboarded:
		return true
	default:
		return false
	}
}

// Employee is a canonical identity record owned by the HRIS directory sync.
// The reconciliation engine reads employees, never writes them.
type Employee struct {
	ID           uuid.UUID        `json:"id"`
	Email        string           `json:"email"`
	DisplayName  string           `json:"display_name"`
	Department   string           `json:"department,omitempty"`
	Status       EmploymentStatus `json:"status"`
	SourceSystem string           `json:"source_system,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewEmployee creates a new Employee with a case-folded primary email.
func NewEmployee(email, displayName, department, sourceSystem string) *Employee {
	now := time.Now()
	return &Employee{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		Department:   department,
		Status:       EmploymentStatusActive,
		SourceSystem: sourceSystem,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsActive reports whether the employee is currently employed.
func (e *Employee) IsActive() bool {
	return e.Status == EmploymentStatusActive
}
