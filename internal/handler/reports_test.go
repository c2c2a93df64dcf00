package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/handler"
	"github.com/pedinu/api/internal/middleware"
)

type mockReportsStore struct {
	users    []database.CountUsersByStatusRow
	payments []database.GetPlatformPaymentStatsRow
	orders   int64
	err      error
}

func (m *mockReportsStore) CountUsersByStatus(_ context.Context) ([]database.CountUsersByStatusRow, error) {
	return m.users, m.err
}

func (m *mockReportsStore) GetPlatformPaymentStats(_ context.Context) ([]database.GetPlatformPaymentStatsRow, error) {
	return m.payments, nil
}

func (m *mockReportsStore) CountKitchenOrders(_ context.Context) (int64, error) {
	return m.orders, nil
}

func setupReportsRouter(store *mockReportsStore) *chi.Mux {
	h := handler.NewReportsHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Use(middleware.RequireRole(enum.UserRoleAdmin))
	r.Route("/admin/dashboard", h.RegisterRoutes)
	return r
}

func TestDashboard(t *testing.T) {
	store := &mockReportsStore{
		users: []database.CountUsersByStatusRow{
			{Status: enum.UserStatusActive, Count: 3},
			{Status: enum.UserStatusPending, Count: 1},
		},
		payments: []database.GetPlatformPaymentStatsRow{
			{Status: database.PaymentStatusApproved, Count: 2, TotalAmount: toNumeric("200"), TotalFees: toNumeric("10")},
			{Status: database.PaymentStatusRejected, Count: 1, TotalAmount: toNumeric("50"), TotalFees: toNumeric("2.5")},
			{Status: database.PaymentStatusCancelled, Count: 1, TotalAmount: toNumeric("30"), TotalFees: toNumeric("1.5")},
		},
		orders: 7,
	}
	router := setupReportsRouter(store)

	rr := doAuthRequest(t, router, "GET", "/admin/dashboard", nil, adminClaims())
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	users := resp["users"].(map[string]interface{})
	if users["total"] != float64(4) || users["active"] != float64(3) || users["inactive"] != float64(0) {
		t.Errorf("users: got %v", users)
	}

	payments := resp["payments"].(map[string]interface{})
	failed := payments["failed"].(map[string]interface{})
	if failed["count"] != float64(2) || failed["amount"] != "80.00" {
		t.Errorf("failed: got %v", failed)
	}
	if approved := payments["approved"].(map[string]interface{}); approved["amount"] != "200.00" {
		t.Errorf("approved: got %v", approved)
	}
	if pending := payments["pending"].(map[string]interface{}); pending["amount"] != "0.00" {
		t.Errorf("pending: got %v", pending)
	}
	if payments["total_platform_fee"] != "14.00" {
		t.Errorf("total_platform_fee: got %v", payments["total_platform_fee"])
	}
	if resp["kitchen_orders"] != float64(7) {
		t.Errorf("kitchen_orders: got %v", resp["kitchen_orders"])
	}
}

func TestDashboard_StoreError(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{err: errors.New("db down")})
	rr := doAuthRequest(t, router, "GET", "/admin/dashboard", nil, adminClaims())
	wantStatus(t, rr, http.StatusInternalServerError)
}
