package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/google/uuid"
)

// Employee methods

// CreateEmployee creates a new employee record.
func (db *DB) CreateEmployee(ctx context.Context, e *models.Employee) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO employees (id, email, display_name, department, status, source_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Email, e.DisplayName, e.Department, string(e.Status), e.SourceSystem, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// GetEmployeeByID returns an employee by ID.
func (db *DB) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var e models.Employee
	var statusStr string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, display_name, department, status, source_system, created_at, updated_at
		FROM employees
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Email, &e.DisplayName, &e.Department, &statusStr, &e.SourceSystem, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get employee by ID: %w", err)
	}
	e.Status = models.EmploymentStatus(statusStr)
	return &e, nil
}

// GetEmployeeByEmail returns an employee by case-folded email.
func (db *DB) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	var statusStr string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, display_name, department, status, source_system, created_at, updated_at
		FROM employees
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(
		&e.ID, &e.Email, &e.DisplayName, &e.Department, &statusStr, &e.SourceSystem, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get employee by email: %w", err)
	}
	e.Status = models.EmploymentStatus(statusStr)
	return &e, nil
}

// ListEmployees returns all employees ordered by email.
func (db *DB) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, email, display_name, department, status, source_system, created_at, updated_at
		FROM employees
		ORDER BY email
	`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

// ListActiveEmployees returns employees with active employment status.
func (db *DB) ListActiveEmployees(ctx context.Context) ([]*models.Employee, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, email, display_name, department, status, source_system, created_at, updated_at
		FROM employees
		WHERE status = $1
		ORDER BY email
	`, string(models.EmploymentStatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func scanEmployees(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.Employee, error) {
	var employees []*models.Employee
	for rows.Next() {
		var e models.Employee
		var statusStr string
		if err := rows.Scan(&e.ID, &e.Email, &e.DisplayName, &e.Department, &statusStr, &e.SourceSystem, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.Status = models.EmploymentStatus(statusStr)
		employees = append(employees, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}
