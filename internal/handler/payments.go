package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/payment"
)

const paymentListLimit = 50

// PaymentStore defines the database methods needed by payment handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PaymentStore interface {
	ListBusinessPayments(ctx context.Context, arg database.ListBusinessPaymentsParams) ([]database.Payment, error)
	UpdatePaymentStatus(ctx context.Context, arg database.UpdatePaymentStatusParams) (database.Payment, error)
	UpdatePaymentStatusByReference(ctx context.Context, arg database.UpdatePaymentStatusByReferenceParams) (database.Payment, error)
}

// PaymentGateway looks up a payment on the gateway. Satisfied by *payment.Client.
type PaymentGateway interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentInfo, error)
}

// PaymentHandler serves the owner's payment history and the gateway webhook.
type PaymentHandler struct {
	store   PaymentStore
	gateway PaymentGateway
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(store PaymentStore, gateway PaymentGateway) *PaymentHandler {
	return &PaymentHandler{store: store, gateway: gateway}
}

// RegisterRoutes registers owner payment endpoints. Mounted at /payments.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{preferenceID}/status", h.UpdateStatus)
}

// RegisterWebhook registers the unauthenticated gateway callback.
// Mounted at /webhooks.
func (h *PaymentHandler) RegisterWebhook(r chi.Router) {
	r.Post("/mercadopago", h.Webhook)
}

// --- Request / Response types ---

type paymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	PreferenceID      string          `json:"preference_id"`
	ExternalReference string          `json:"external_reference"`
	Amount            string          `json:"amount"`
	PlatformFee       string          `json:"platform_fee"`
	BusinessAmount    string          `json:"business_amount"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	PaymentMethod     string          `json:"payment_method"`
	Items             json.RawMessage `json:"items"`
	Status            string          `json:"status"`
	GatewayPaymentID  *string         `json:"gateway_payment_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toPaymentResponse(p database.Payment) paymentResponse {
	items := json.RawMessage(p.Items)
	if len(items) == 0 {
		items = json.RawMessage("[]")
	}
	return paymentResponse{
		ID:                p.ID,
		PreferenceID:      p.PreferenceID,
		ExternalReference: p.ExternalReference,
		Amount:            money(p.Amount),
		PlatformFee:       money(p.PlatformFee),
		BusinessAmount:    money(p.BusinessAmount),
		CustomerName:      p.CustomerName,
		CustomerPhone:     p.CustomerPhone,
		PaymentMethod:     string(p.PaymentMethod),
		Items:             items,
		Status:            string(p.Status),
		GatewayPaymentID:  textPtr(p.GatewayPaymentID),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type updatePaymentStatusRequest struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

// webhookNotification is the body the gateway posts. data.id arrives as a
// string, older topics send it as a number.
type webhookNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// --- Handlers ---

// List handles GET /payments. Returns the 50 most recent.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	payments, err := h.store.ListBusinessPayments(r.Context(), database.ListBusinessPaymentsParams{
		BusinessID: businessID,
		Limit:      paymentListLimit,
	})
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /payments/{preferenceID}/status.
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !validPaymentStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	p, err := h.store.UpdatePaymentStatus(r.Context(), database.UpdatePaymentStatusParams{
		PreferenceID:     chi.URLParam(r, "preferenceID"),
		Status:           database.PaymentStatus(req.Status),
		GatewayPaymentID: database.Text(req.PaymentID),
		BusinessID:       businessID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
			return
		}
		log.Printf("ERROR: update payment status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

// Webhook handles POST /webhooks/mercadopago. Replays are harmless: the
// payment row is overwritten with whatever the gateway reports now.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	topic, paymentID := notificationTarget(r)
	if topic != "payment" || paymentID == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	info, err := h.gateway.GetPaymentStatus(r.Context(), paymentID)
	if err != nil {
		log.Printf("ERROR: webhook fetch payment %s: %v", paymentID, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment lookup failed"})
		return
	}
	if info.ExternalReference == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	_, err = h.store.UpdatePaymentStatusByReference(r.Context(), database.UpdatePaymentStatusByReferenceParams{
		ExternalReference: info.ExternalReference,
		Status:            database.PaymentStatus(payment.MapStatus(info.Status)),
		GatewayPaymentID:  database.Text(strconv.FormatInt(info.ID, 10)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("WARN: webhook for unknown reference %s", info.ExternalReference)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		log.Printf("ERROR: webhook update payment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Helpers ---

// notificationTarget reads the topic and payment id from the JSON body,
// falling back to the ?type=&data.id= / ?topic=&id= query forms.
func notificationTarget(r *http.Request) (topic, id string) {
	var n webhookNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err == nil {
		topic = n.Type
		id = rawID(n.Data.ID)
	}

	q := r.URL.Query()
	if topic == "" {
		topic = q.Get("type")
	}
	if topic == "" {
		topic = q.Get("topic")
	}
	if id == "" {
		id = q.Get("data.id")
	}
	if id == "" {
		id = q.Get("id")
	}
	return topic, id
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func validPaymentStatus(s string) bool {
	switch s {
	case enum.PaymentStatusPending, enum.PaymentStatusApproved,
		enum.PaymentStatusRejected, enum.PaymentStatusCancelled:
		return true
	}
	return false
}
