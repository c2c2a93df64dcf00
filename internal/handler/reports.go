package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
)

// ReportsStore defines the database methods needed by the platform dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	CountUsersByStatus(ctx context.Context) ([]database.CountUsersByStatusRow, error)
	GetPlatformPaymentStats(ctx context.Context) ([]database.GetPlatformPaymentStatsRow, error)
	CountKitchenOrders(ctx context.Context) (int64, error)
}

// ReportsHandler serves the admin dashboard totals.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers dashboard endpoints. Mounted at /admin/dashboard.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Dashboard)
}

// --- Response types ---

type userCountsResponse struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Pending  int64 `json:"pending"`
}

type paymentBucketResponse struct {
	Count  int64  `json:"count"`
	Amount string `json:"amount"`
}

type paymentStatsResponse struct {
	Approved         paymentBucketResponse `json:"approved"`
	Pending          paymentBucketResponse `json:"pending"`
	Failed           paymentBucketResponse `json:"failed"`
	TotalPlatformFee string                `json:"total_platform_fee"`
}

type dashboardResponse struct {
	Users         userCountsResponse   `json:"users"`
	Payments      paymentStatsResponse `json:"payments"`
	KitchenOrders int64                `json:"kitchen_orders"`
}

// --- Handlers ---

// Dashboard handles GET /admin/dashboard.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userRows, err := h.store.CountUsersByStatus(ctx)
	if err != nil {
		log.Printf("ERROR: count users: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	paymentRows, err := h.store.GetPlatformPaymentStats(ctx)
	if err != nil {
		log.Printf("ERROR: platform payment stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := h.store.CountKitchenOrders(ctx)
	if err != nil {
		log.Printf("ERROR: count kitchen orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Users:         countUsers(userRows),
		Payments:      summarizePayments(paymentRows),
		KitchenOrders: orders,
	})
}

// --- Helpers ---

func countUsers(rows []database.CountUsersByStatusRow) userCountsResponse {
	var resp userCountsResponse
	for _, row := range rows {
		resp.Total += row.Count
		switch row.Status {
		case enum.UserStatusActive:
			resp.Active += row.Count
		case enum.UserStatusInactive:
			resp.Inactive += row.Count
		case enum.UserStatusPending:
			resp.Pending += row.Count
		}
	}
	return resp
}

// summarizePayments folds rejected and cancelled into "failed". The
// platform fee total covers every status.
func summarizePayments(rows []database.GetPlatformPaymentStatsRow) paymentStatsResponse {
	var approved, pending, failed, fees decimal.Decimal
	var resp paymentStatsResponse
	for _, row := range rows {
		amount := database.FromNumeric(row.TotalAmount)
		fees = fees.Add(database.FromNumeric(row.TotalFees))
		switch string(row.Status) {
		case enum.PaymentStatusApproved:
			resp.Approved.Count += row.Count
			approved = approved.Add(amount)
		case enum.PaymentStatusPending:
			resp.Pending.Count += row.Count
			pending = pending.Add(amount)
		case enum.PaymentStatusRejected, enum.PaymentStatusCancelled:
			resp.Failed.Count += row.Count
			failed = failed.Add(amount)
		}
	}
	resp.Approved.Amount = approved.StringFixed(2)
	resp.Pending.Amount = pending.StringFixed(2)
	resp.Failed.Amount = failed.StringFixed(2)
	resp.TotalPlatformFee = fees.StringFixed(2)
	return resp
}
