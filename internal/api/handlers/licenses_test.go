package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kiefer-Networks/licence-manager/internal/db"
	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockLicenseStore struct {
	licenses   []*models.License
	employees  []*models.Employee
	lastFilter db.LicenseFilter
	confirmed  map[uuid.UUID]uuid.UUID
	rejected   map[uuid.UUID]bool
	confirmErr error
	rejectErr  error
	listErr    error
}

func newMockLicenseStore() *mockLicenseStore {
	return &mockLicenseStore{
		confirmed: make(map[uuid.UUID]uuid.UUID),
		rejected:  make(map[uuid.UUID]bool),
	}
}

func (m *mockLicenseStore) GetLicenseByID(_ context.Context, id uuid.UUID) (*models.License, error) {
	for _, l := range m.licenses {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockLicenseStore) ListLicenses(_ context.Context, filter db.LicenseFilter) ([]*models.License, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.lastFilter = filter
	return m.licenses, nil
}

func (m *mockLicenseStore) ConfirmLicenseMatch(_ context.Context, id, employeeID uuid.UUID) error {
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.confirmed[id] = employeeID
	return nil
}

func (m *mockLicenseStore) RejectLicenseMatch(_ context.Context, id uuid.UUID) error {
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.rejected[id] = true
	return nil
}

func (m *mockLicenseStore) GetEmployeeByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	for _, e := range m.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func setupLicenseTestRouter(store LicenseStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewLicensesHandler(store, zerolog.Nop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestLicensesList(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		store := newMockLicenseStore()
		store.licenses = []*models.License{models.NewLicense(uuid.New(), "a@corp.com")}
		r := setupLicenseTestRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/licenses", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("filters passed through", func(t *testing.T) {
		store := newMockLicenseStore()
		r := setupLicenseTestRouter(store)
		vendorID := uuid.New()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET",
			"/api/v1/licenses?vendor_id="+vendorID.String()+"&status=active&match_status=suggested&needs_review=true", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if store.lastFilter.VendorID == nil || *store.lastFilter.VendorID != vendorID {
			t.Error("expected vendor_id filter to be set")
		}
		if store.lastFilter.Status != models.LicenseStatusActive {
			t.Errorf("expected status filter active, got %q", store.lastFilter.Status)
		}
		if store.lastFilter.MatchStatus == nil || *store.lastFilter.MatchStatus != models.MatchStatusSuggested {
			t.Error("expected match_status filter to be set")
		}
		if !store.lastFilter.NeedsReview {
			t.Error("expected needs_review filter to be set")
		}
	})

	t.Run("bad vendor_id", func(t *testing.T) {
		r := setupLicenseTestRouter(newMockLicenseStore())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/licenses?vendor_id=nope", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("bad status", func(t *testing.T) {
		r := setupLicenseTestRouter(newMockLicenseStore())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/licenses?status=lapsed", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("bad match_status", func(t *testing.T) {
		r := setupLicenseTestRouter(newMockLicenseStore())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/licenses?match_status=guessed", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestLicensesConfirm(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store := newMockLicenseStore()
		license := models.NewLicense(uuid.New(), "maybe@corp.com")
		emp := models.NewEmployee("maybe@corp.com", "Maybe Person", "", "hris")
		store.licenses = []*models.License{license}
		store.employees = []*models.Employee{emp}
		r := setupLicenseTestRouter(store)

		body := jsonBody(t, ConfirmMatchRequest{EmployeeID: emp.ID})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+license.ID.String()+"/confirm", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if store.confirmed[license.ID] != emp.ID {
			t.Error("expected confirmation to be persisted")
		}
	})

	t.Run("unknown employee", func(t *testing.T) {
		store := newMockLicenseStore()
		license := models.NewLicense(uuid.New(), "maybe@corp.com")
		store.licenses = []*models.License{license}
		r := setupLicenseTestRouter(store)

		body := jsonBody(t, ConfirmMatchRequest{EmployeeID: uuid.New()})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+license.ID.String()+"/confirm", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
		if len(store.confirmed) != 0 {
			t.Error("expected no confirmation persisted")
		}
	})

	t.Run("unknown license", func(t *testing.T) {
		store := newMockLicenseStore()
		r := setupLicenseTestRouter(store)

		body := jsonBody(t, ConfirmMatchRequest{EmployeeID: uuid.New()})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+uuid.New().String()+"/confirm", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("missing employee_id", func(t *testing.T) {
		store := newMockLicenseStore()
		license := models.NewLicense(uuid.New(), "maybe@corp.com")
		store.licenses = []*models.License{license}
		r := setupLicenseTestRouter(store)

		body := jsonBody(t, map[string]string{})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+license.ID.String()+"/confirm", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestLicensesReject(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store := newMockLicenseStore()
		license := models.NewLicense(uuid.New(), "wrong@corp.com")
		store.licenses = []*models.License{license}
		r := setupLicenseTestRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+license.ID.String()+"/reject", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if !store.rejected[license.ID] {
			t.Error("expected rejection to be persisted")
		}
	})

	t.Run("unknown license", func(t *testing.T) {
		r := setupLicenseTestRouter(newMockLicenseStore())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/licenses/"+uuid.New().String()+"/reject", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}

func TestLicensesGet(t *testing.T) {
	store := newMockLicenseStore()
	license := models.NewLicense(uuid.New(), "one@corp.com")
	license.Email = "one@corp.com"
	store.licenses = []*models.License{license}
	r := setupLicenseTestRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/licenses/"+license.ID.String(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got models.License
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.Email != "one@corp.com" {
		t.Errorf("expected email to round-trip, got %q", got.Email)
	}
}
