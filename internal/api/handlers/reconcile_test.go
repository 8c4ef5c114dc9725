package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kiefer-Networks/licence-manager/internal/reconcile"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockReconciler struct {
	results   []reconcile.Result
	result    reconcile.Result
	allErr    error
	vendorErr error
}

func (m *mockReconciler) ReconcileAll(_ context.Context) ([]reconcile.Result, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}
	return m.results, nil
}

func (m *mockReconciler) ReconcileVendor(_ context.Context, _ uuid.UUID) (reconcile.Result, error) {
	if m.vendorErr != nil {
		return reconcile.Result{}, m.vendorErr
	}
	return m.result, nil
}

func setupReconcileTestRouter(service Reconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewReconcileHandler(service, zerolog.Nop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestReconcileRunAll(t *testing.T) {
	t.Run("returns per-vendor results", func(t *testing.T) {
		service := &mockReconciler{results: []reconcile.Result{
			{VendorID: uuid.New(), VendorName: "Slack"},
			{VendorID: uuid.New(), VendorName: "Zoom", Error: "provider timeout"},
		}}
		r := setupReconcileTestRouter(service)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Results []reconcile.Result `json:"results"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if len(resp.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(resp.Results))
		}
	})

	t.Run("run error", func(t *testing.T) {
		r := setupReconcileTestRouter(&mockReconciler{allErr: errors.New("db down")})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}

func TestReconcileRunVendor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		vendorID := uuid.New()
		service := &mockReconciler{result: reconcile.Result{VendorID: vendorID, VendorName: "Slack"}}
		r := setupReconcileTestRouter(service)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors/"+vendorID.String()+"/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("vendor busy", func(t *testing.T) {
		service := &mockReconciler{result: reconcile.Result{Error: reconcile.ErrVendorBusy.Error()}}
		r := setupReconcileTestRouter(service)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors/"+uuid.New().String()+"/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		r := setupReconcileTestRouter(&mockReconciler{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors/not-a-uuid/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown vendor", func(t *testing.T) {
		r := setupReconcileTestRouter(&mockReconciler{vendorErr: errors.New("vendor not found")})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/vendors/"+uuid.New().String()+"/reconcile", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}
