package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
)

// WithdrawalStore defines the database methods needed by withdrawal handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type WithdrawalStore interface {
	CreateWithdrawal(ctx context.Context, arg database.CreateWithdrawalParams) (database.Withdrawal, error)
	ListWithdrawalsByBusiness(ctx context.Context, businessID uuid.UUID) ([]database.Withdrawal, error)
	ListWithdrawals(ctx context.Context, status string) ([]database.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, id uuid.UUID) (database.Withdrawal, error)
	RejectWithdrawal(ctx context.Context, arg database.RejectWithdrawalParams) (database.Withdrawal, error)
}

// WithdrawalHandler covers both sides of a payout: owners request one,
// admins approve or reject it.
type WithdrawalHandler struct {
	store WithdrawalStore
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(store WithdrawalStore) *WithdrawalHandler {
	return &WithdrawalHandler{store: store}
}

// RegisterRoutes registers owner endpoints. Mounted at /withdrawals.
func (h *WithdrawalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListOwn)
	r.Post("/", h.Create)
}

// RegisterAdminRoutes registers admin endpoints. Mounted at /admin/withdrawals.
func (h *WithdrawalHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
}

// --- Request / Response types ---

type createWithdrawalRequest struct {
	Amount   string `json:"amount"`
	BankInfo string `json:"bank_info"`
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

type withdrawalResponse struct {
	ID              uuid.UUID  `json:"id"`
	BusinessID      uuid.UUID  `json:"business_id"`
	Amount          string     `json:"amount"`
	BankInfo        string     `json:"bank_info"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at"`
}

func toWithdrawalResponse(wd database.Withdrawal) withdrawalResponse {
	resp := withdrawalResponse{
		ID:              wd.ID,
		BusinessID:      wd.BusinessID,
		Amount:          money(wd.Amount),
		BankInfo:        wd.BankInfo,
		Status:          string(wd.Status),
		RejectionReason: textPtr(wd.RejectionReason),
		CreatedAt:       wd.CreatedAt,
	}
	if wd.ProcessedAt.Valid {
		t := wd.ProcessedAt.Time
		resp.ProcessedAt = &t
	}
	return resp
}

func toWithdrawalResponses(list []database.Withdrawal) []withdrawalResponse {
	resp := make([]withdrawalResponse, len(list))
	for i, wd := range list {
		resp[i] = toWithdrawalResponse(wd)
	}
	return resp
}

// --- Owner handlers ---

// Create handles POST /withdrawals.
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req createWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, err := parseMoney(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a positive value"})
		return
	}
	bankInfo := strings.TrimSpace(req.BankInfo)
	if bankInfo == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bank_info is required"})
		return
	}

	wd, err := h.store.CreateWithdrawal(r.Context(), database.CreateWithdrawalParams{
		BusinessID: businessID,
		Amount:     database.ToNumeric(amount),
		BankInfo:   bankInfo,
	})
	if err != nil {
		log.Printf("ERROR: create withdrawal: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toWithdrawalResponse(wd))
}

// ListOwn handles GET /withdrawals.
func (h *WithdrawalHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	list, err := h.store.ListWithdrawalsByBusiness(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list withdrawals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponses(list))
}

// --- Admin handlers ---

// List handles GET /admin/withdrawals?status=. An empty status lists all.
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", enum.WithdrawalStatusPending, enum.WithdrawalStatusApproved, enum.WithdrawalStatusRejected:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	list, err := h.store.ListWithdrawals(r.Context(), status)
	if err != nil {
		log.Printf("ERROR: list withdrawals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponses(list))
}

// Approve handles POST /admin/withdrawals/{id}/approve. Only pending
// requests can be approved.
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "withdrawal")
	if !ok {
		return
	}

	wd, err := h.store.ApproveWithdrawal(r.Context(), id)
	if err != nil {
		writeWithdrawalError(w, "approve", err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponse(wd))
}

// Reject handles POST /admin/withdrawals/{id}/reject.
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "withdrawal")
	if !ok {
		return
	}

	var req rejectWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}

	wd, err := h.store.RejectWithdrawal(r.Context(), database.RejectWithdrawalParams{
		ID:              id,
		RejectionReason: database.Text(reason),
	})
	if err != nil {
		writeWithdrawalError(w, "reject", err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalResponse(wd))
}

// --- Helpers ---

// writeWithdrawalError maps no-rows to 404: the id is unknown or the
// request was already processed.
func writeWithdrawalError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pending withdrawal not found"})
		return
	}
	log.Printf("ERROR: %s withdrawal: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
