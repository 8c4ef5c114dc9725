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

type mockStatsStore struct {
	vendors     []*models.Vendor
	costs       map[uuid.UUID]float64
	needsReview int
	costsErr    error
}

func (m *mockStatsStore) ListVendors(_ context.Context) ([]*models.Vendor, error) {
	return m.vendors, nil
}

func (m *mockStatsStore) ActiveMonthlyCostByVendor(_ context.Context) (map[uuid.UUID]float64, error) {
	if m.costsErr != nil {
		return nil, m.costsErr
	}
	return m.costs, nil
}

func (m *mockStatsStore) CountLicensesNeedingReview(_ context.Context) (int, error) {
	return m.needsReview, nil
}

func setupStatsTestRouter(store StatsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewStatsHandler(store, zerolog.Nop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStatsCosts(t *testing.T) {
	t.Run("sums per-vendor spend", func(t *testing.T) {
		slack := models.NewVendor("Slack", models.VendorTypeSlack)
		zoom := models.NewVendor("Zoom", models.VendorTypeZoom)
		store := &mockStatsStore{
			vendors: []*models.Vendor{slack, zoom},
			costs: map[uuid.UUID]float64{
				slack.ID: 125.50,
				zoom.ID:  40,
			},
			needsReview: 7,
		}
		r := setupStatsTestRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/stats/costs", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Vendors      []VendorCost `json:"vendors"`
			TotalMonthly float64      `json:"total_monthly"`
			NeedsReview  int          `json:"needs_review"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if len(resp.Vendors) != 2 {
			t.Fatalf("expected 2 vendor costs, got %d", len(resp.Vendors))
		}
		if resp.TotalMonthly != 165.50 {
			t.Errorf("expected total 165.50, got %v", resp.TotalMonthly)
		}
		if resp.NeedsReview != 7 {
			t.Errorf("expected 7 needing review, got %d", resp.NeedsReview)
		}
	})

	t.Run("vendor with no active seats costs zero", func(t *testing.T) {
		idle := models.NewVendor("Idle", models.VendorTypeStatic)
		store := &mockStatsStore{
			vendors: []*models.Vendor{idle},
			costs:   map[uuid.UUID]float64{},
		}
		r := setupStatsTestRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/stats/costs", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var resp struct {
			Vendors      []VendorCost `json:"vendors"`
			TotalMonthly float64      `json:"total_monthly"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if resp.Vendors[0].MonthlyCost != 0 {
			t.Errorf("expected zero cost, got %v", resp.Vendors[0].MonthlyCost)
		}
		if resp.TotalMonthly != 0 {
			t.Errorf("expected zero total, got %v", resp.TotalMonthly)
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := &mockStatsStore{costsErr: errors.New("db down")}
		r := setupStatsTestRouter(store)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/stats/costs", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}
