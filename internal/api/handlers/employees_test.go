package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockEmployeeStore struct {
	employees []*models.Employee
	createErr error
}

func (m *mockEmployeeStore) CreateEmployee(_ context.Context, e *models.Employee) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.employees = append(m.employees, e)
	return nil
}

func (m *mockEmployeeStore) GetEmployeeByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	for _, e := range m.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockEmployeeStore) ListEmployees(_ context.Context) ([]*models.Employee, error) {
	return m.employees, nil
}

func setupEmployeeTestRouter(store EmployeeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewEmployeesHandler(store, zerolog.Nop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestEmployeesCreate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store := &mockEmployeeStore{}
		r := setupEmployeeTestRouter(store)

		body := jsonBody(t, CreateEmployeeRequest{
			Email:       "Alice.Smith@corp.com",
			DisplayName: "Alice Smith",
			Department:  "Engineering",
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/employees", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if len(store.employees) != 1 {
			t.Fatal("expected employee to be persisted")
		}
		if store.employees[0].Email != "alice.smith@corp.com" {
			t.Errorf("expected case-folded email, got %q", store.employees[0].Email)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		r := setupEmployeeTestRouter(&mockEmployeeStore{})

		body := jsonBody(t, CreateEmployeeRequest{Email: "not-an-email", DisplayName: "Someone"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/employees", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("missing display name", func(t *testing.T) {
		r := setupEmployeeTestRouter(&mockEmployeeStore{})

		body := jsonBody(t, CreateEmployeeRequest{Email: "bob@corp.com"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/employees", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestEmployeesGet(t *testing.T) {
	emp := models.NewEmployee("carol@corp.com", "Carol Baker", "", "hris")
	store := &mockEmployeeStore{employees: []*models.Employee{emp}}
	r := setupEmployeeTestRouter(store)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/employees/"+emp.ID.String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var got models.Employee
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if got.Email != "carol@corp.com" {
			t.Errorf("expected email to round-trip, got %q", got.Email)
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/employees/"+uuid.New().String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/employees/nope", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestEmployeesList(t *testing.T) {
	store := &mockEmployeeStore{employees: []*models.Employee{
		models.NewEmployee("a@corp.com", "A", "", "hris"),
		models.NewEmployee("b@corp.com", "B", "", "hris"),
	}}
	r := setupEmployeeTestRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/employees", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Employees []models.Employee `json:"employees"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(resp.Employees))
	}
}
