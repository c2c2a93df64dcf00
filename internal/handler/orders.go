package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/printout"
	"github.com/pedinu/api/internal/service"
)

// OrderServicer defines the service methods needed by kitchen order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	UpdateStatus(ctx context.Context, businessID, orderID uuid.UUID, next database.KitchenOrderStatus) (database.KitchenOrder, error)
	Advance(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error)
	Cancel(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error)
}

// OrderStore defines the database methods needed by kitchen order reads.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListKitchenOrders(ctx context.Context, businessID uuid.UUID) ([]database.KitchenOrder, error)
	GetKitchenOrder(ctx context.Context, arg database.GetKitchenOrderParams) (database.KitchenOrder, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// OrderHandler serves the kitchen board.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers board endpoints. Mounted at /kitchen/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Board)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/advance", h.Advance)
	r.Post("/{id}/cancel", h.Cancel)
	r.Get("/{id}/ticket.pdf", h.Ticket)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type boardResponse struct {
	kitchen.BoardView
	CancelledStage kitchen.Stage `json:"cancelled_stage"`
}

// --- Handlers ---

// Board groups the business orders into stage columns. ?q= filters by
// order id or customer name.
func (h *OrderHandler) Board(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	orders, err := h.store.ListKitchenOrders(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list kitchen orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, boardResponse{
		BoardView:      kitchen.Board(orders, r.URL.Query().Get("q")),
		CancelledStage: kitchen.CancelledStage,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, kitchen.NewView(order))
}

// UpdateStatus moves an order to the requested status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	status, ok := kitchen.ParseStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), businessID, orderID, status)
	if err != nil {
		writeOrderServiceError(w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, kitchen.NewView(order))
}

// Advance moves an order to its next stage.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.Advance(r.Context(), businessID, orderID)
	if err != nil {
		writeOrderServiceError(w, "advance order", err)
		return
	}
	writeJSON(w, http.StatusOK, kitchen.NewView(order))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.Cancel(r.Context(), businessID, orderID)
	if err != nil {
		writeOrderServiceError(w, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, kitchen.NewView(order))
}

// Ticket renders the order as a printable 80mm PDF.
func (h *OrderHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), order.BusinessID)
	if err != nil {
		log.Printf("ERROR: get business for ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	view := kitchen.NewView(order)
	pdf, err := printout.KitchenTicket(user.BusinessName, view)
	if err != nil {
		log.Printf("ERROR: render ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=pedido-"+view.OrderNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf) //nolint:errcheck
}

// --- Helpers ---

func (h *OrderHandler) load(w http.ResponseWriter, r *http.Request) (database.KitchenOrder, bool) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return database.KitchenOrder{}, false
	}
	orderID, ok := urlID(w, r, "id", "order")
	if !ok {
		return database.KitchenOrder{}, false
	}

	order, err := h.store.GetKitchenOrder(r.Context(), database.GetKitchenOrderParams{ID: orderID, BusinessID: businessID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return database.KitchenOrder{}, false
		}
		log.Printf("ERROR: get kitchen order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.KitchenOrder{}, false
	}
	return order, true
}

func writeOrderServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, kitchen.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrStatusChanged), errors.Is(err, service.ErrCannotCancel):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
