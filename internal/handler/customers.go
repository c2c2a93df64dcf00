package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/kitchen"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	ListCustomersByBusiness(ctx context.Context, businessID uuid.UUID) ([]database.Customer, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	GetCustomerStats(ctx context.Context, businessID uuid.UUID) (database.GetCustomerStatsRow, error)
	ListCustomerOrders(ctx context.Context, arg database.ListCustomerOrdersParams) ([]database.CustomerOrder, error)
}

// CustomerHandler exposes the customer records built from placed orders.
// Customers are read-only; the outbox worker is the only writer.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints. Mounted at /customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/orders", h.Orders)
}

// --- Request / Response types ---

type customerResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Neighborhood  *string    `json:"neighborhood"`
	Address       *string    `json:"address"`
	TotalOrders   int32      `json:"total_orders"`
	TotalSpent    string     `json:"total_spent"`
	LastOrderDate *time.Time `json:"last_order_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	resp := customerResponse{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Neighborhood: textPtr(c.Neighborhood),
		Address:      textPtr(c.Address),
		TotalOrders:  c.TotalOrders,
		TotalSpent:   money(c.TotalSpent),
		CreatedAt:    c.CreatedAt,
	}
	if c.LastOrderDate.Valid {
		t := c.LastOrderDate.Time
		resp.LastOrderDate = &t
	}
	return resp
}

type customerStatsResponse struct {
	TotalCustomers    int64  `json:"total_customers"`
	TotalOrders       int64  `json:"total_orders"`
	TotalRevenue      string `json:"total_revenue"`
	AverageOrderValue string `json:"average_order_value"`
}

type customerOrderResponse struct {
	ID            uuid.UUID      `json:"id"`
	Items         []kitchen.Item `json:"items"`
	Subtotal      string         `json:"subtotal"`
	DeliveryFee   string         `json:"delivery_fee"`
	Total         string         `json:"total"`
	PaymentMethod string         `json:"payment_method"`
	PaymentLabel  string         `json:"payment_label"`
	Neighborhood  *string        `json:"neighborhood"`
	Address       *string        `json:"address"`
	Notes         *string        `json:"notes"`
	OrderDate     time.Time      `json:"order_date"`
}

func toCustomerOrderResponse(o database.CustomerOrder) customerOrderResponse {
	items := []kitchen.Item{}
	if len(o.Items) > 0 {
		if err := json.Unmarshal(o.Items, &items); err != nil {
			log.Printf("WARN: decode customer order %s items: %v", o.ID, err)
		}
	}
	return customerOrderResponse{
		ID:            o.ID,
		Items:         items,
		Subtotal:      money(o.Subtotal),
		DeliveryFee:   money(o.DeliveryFee),
		Total:         money(o.Total),
		PaymentMethod: string(o.PaymentMethod),
		PaymentLabel:  enum.PaymentMethodLabel(string(o.PaymentMethod)),
		Neighborhood:  textPtr(o.Neighborhood),
		Address:       textPtr(o.Address),
		Notes:         textPtr(o.Notes),
		OrderDate:     o.OrderDate,
	}
}

// averageOrderValue is revenue / orders, or zero without orders.
func averageOrderValue(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(orders)).Round(2)
}

// --- Handlers ---

// List returns customers, most recent order first.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	customers, err := h.store.ListCustomersByBusiness(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list customers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomerResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats returns business-wide customer totals.
func (h *CustomerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	row, err := h.store.GetCustomerStats(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: customer stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	revenue := database.FromNumeric(row.TotalRevenue)
	writeJSON(w, http.StatusOK, customerStatsResponse{
		TotalCustomers:    row.TotalCustomers,
		TotalOrders:       row.TotalOrders,
		TotalRevenue:      revenue.StringFixed(2),
		AverageOrderValue: averageOrderValue(revenue, row.TotalOrders).StringFixed(2),
	})
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	customerID, ok := urlID(w, r, "id", "customer")
	if !ok {
		return
	}

	c, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{ID: customerID, BusinessID: businessID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: get customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// Orders returns one customer's order history, newest first.
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	customerID, ok := urlID(w, r, "id", "customer")
	if !ok {
		return
	}

	orders, err := h.store.ListCustomerOrders(r.Context(), database.ListCustomerOrdersParams{
		BusinessID: businessID,
		CustomerID: customerID,
	})
	if err != nil {
		log.Printf("ERROR: list customer orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]customerOrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toCustomerOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}
