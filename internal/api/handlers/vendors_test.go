package handlers

import (
	"bytes"
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

type mockVendorStore struct {
	vendors   []*models.Vendor
	runs      []*models.SyncRun
	created   *models.Vendor
	updated   *models.Vendor
	createErr error
	updateErr error
	listErr   error
	runsErr   error
	runsLimit int
}

func (m *mockVendorStore) CreateVendor(_ context.Context, v *models.Vendor) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = v
	return nil
}

func (m *mockVendorStore) GetVendorByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	for _, v := range m.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockVendorStore) ListVendors(_ context.Context) ([]*models.Vendor, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.vendors, nil
}

func (m *mockVendorStore) UpdateVendor(_ context.Context, v *models.Vendor) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = v
	return nil
}

func (m *mockVendorStore) ListSyncRuns(_ context.Context, _ uuid.UUID, limit int) ([]*models.SyncRun, error) {
	if m.runsErr != nil {
		return nil, m.runsErr
	}
	m.runsLimit = limit
	return m.runs, nil
}

func setupVendorTestRouter(store VendorStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewVendorsHandler(store, zerolog.Nop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestVendorsList(t *testing.T) {
	store := &mockVendorStore{vendors: []*models.Vendor{
		models.NewVendor("Slack", models.VendorTypeSlack),
		models.NewVendor("Zoom", models.VendorTypeZoom),
	}}
	r := setupVendorTestRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vendors", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Vendors []models.Vendor `json:"vendors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Vendors) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(resp.Vendors))
	}
}

func TestVendorsCreate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		store := &mockVendorStore{}
		r := setupVendorTestRouter(store)

		body := jsonBody(t, CreateVendorRequest{
			Name:         "Microsoft 365",
			Type:         "microsoft365",
			Currency:     "EUR",
			BillingCycle: "yearly",
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if store.created == nil {
			t.Fatal("expected vendor to be persisted")
		}
		if store.created.Currency != "EUR" {
			t.Errorf("expected currency EUR, got %q", store.created.Currency)
		}
		if store.created.BillingCycle != models.BillingCycleYearly {
			t.Errorf("expected yearly billing, got %q", store.created.BillingCycle)
		}
		if !store.created.Enabled {
			t.Error("expected vendor enabled by default")
		}
	})

	t.Run("invalid vendor type", func(t *testing.T) {
		r := setupVendorTestRouter(&mockVendorStore{})

		body := jsonBody(t, CreateVendorRequest{Name: "Bad", Type: "fax_machine"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid billing cycle", func(t *testing.T) {
		r := setupVendorTestRouter(&mockVendorStore{})

		body := jsonBody(t, CreateVendorRequest{Name: "Bad", Type: "slack", BillingCycle: "fortnightly"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		r := setupVendorTestRouter(&mockVendorStore{})

		body := jsonBody(t, CreateVendorRequest{Type: "slack"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestVendorsGet(t *testing.T) {
	vendor := models.NewVendor("GitHub", models.VendorTypeGitHub)
	store := &mockVendorStore{vendors: []*models.Vendor{vendor}}
	r := setupVendorTestRouter(store)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/vendors/"+vendor.ID.String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/vendors/"+uuid.New().String(), nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/vendors/not-a-uuid", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestVendorsUpdate(t *testing.T) {
	vendor := models.NewVendor("Atlassian", models.VendorTypeAtlassian)
	store := &mockVendorStore{vendors: []*models.Vendor{vendor}}
	r := setupVendorTestRouter(store)

	disabled := false
	body := jsonBody(t, UpdateVendorRequest{Name: "Atlassian Cloud", Enabled: &disabled})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/vendors/"+vendor.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.updated == nil {
		t.Fatal("expected vendor to be updated")
	}
	if store.updated.Name != "Atlassian Cloud" {
		t.Errorf("expected updated name, got %q", store.updated.Name)
	}
	if store.updated.Enabled {
		t.Error("expected vendor disabled")
	}
}

func TestVendorsRuns(t *testing.T) {
	vendor := models.NewVendor("Run Vendor", models.VendorTypeStatic)
	run := models.NewSyncRun(vendor.ID)
	run.Complete(2, 1, 0, 3, 0)
	store := &mockVendorStore{vendors: []*models.Vendor{vendor}, runs: []*models.SyncRun{run}}
	r := setupVendorTestRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vendors/"+vendor.ID.String()+"/runs?limit=5", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if store.runsLimit != 5 {
		t.Errorf("expected limit 5 passed through, got %d", store.runsLimit)
	}

	var resp struct {
		Runs []models.SyncRun `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(resp.Runs))
	}
	if resp.Runs[0].Created != 2 {
		t.Errorf("expected created count 2, got %d", resp.Runs[0].Created)
	}
}
