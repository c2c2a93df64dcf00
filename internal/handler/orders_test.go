package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/handler"
	"github.com/pedinu/api/internal/kitchen"
	"github.com/pedinu/api/internal/middleware"
	"github.com/pedinu/api/internal/service"
)

// --- Mocks ---

type mockOrderService struct {
	updateStatusFn func(ctx context.Context, businessID, orderID uuid.UUID, next database.KitchenOrderStatus) (database.KitchenOrder, error)
	advanceFn      func(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error)
	cancelFn       func(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, businessID, orderID uuid.UUID, next database.KitchenOrderStatus) (database.KitchenOrder, error) {
	return m.updateStatusFn(ctx, businessID, orderID, next)
}

func (m *mockOrderService) Advance(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error) {
	return m.advanceFn(ctx, businessID, orderID)
}

func (m *mockOrderService) Cancel(ctx context.Context, businessID, orderID uuid.UUID) (database.KitchenOrder, error) {
	return m.cancelFn(ctx, businessID, orderID)
}

type mockOrderStore struct {
	orders map[uuid.UUID]database.KitchenOrder
	users  map[uuid.UUID]database.User
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders: make(map[uuid.UUID]database.KitchenOrder),
		users:  make(map[uuid.UUID]database.User),
	}
}

func (m *mockOrderStore) ListKitchenOrders(_ context.Context, businessID uuid.UUID) ([]database.KitchenOrder, error) {
	result := []database.KitchenOrder{}
	for _, o := range m.orders {
		if o.BusinessID == businessID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *mockOrderStore) GetKitchenOrder(_ context.Context, arg database.GetKitchenOrderParams) (database.KitchenOrder, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.BusinessID != arg.BusinessID {
		return database.KitchenOrder{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockOrderStore) addOrder(businessID uuid.UUID, name string, status database.KitchenOrderStatus) database.KitchenOrder {
	o := database.KitchenOrder{
		ID:            uuid.New(),
		BusinessID:    businessID,
		CustomerName:  name,
		Items:         []byte(`[{"name":"Margherita","quantity":2,"price":"30.00"}]`),
		Total:         toNumeric("60"),
		Status:        status,
		OrderTime:     time.Now(),
		OrderType:     database.OrderTypeDelivery,
		PaymentMethod: database.PaymentMethodPix,
	}
	m.orders[o.ID] = o
	return o
}

// --- Helpers ---

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore) *chi.Mux {
	h := handler.NewOrderHandler(svc, store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/kitchen/orders", h.RegisterRoutes)
	return r
}

// --- Board ---

func TestOrderBoard_GroupsByStage(t *testing.T) {
	store := newMockOrderStore()
	businessID := uuid.New()
	store.addOrder(businessID, "Maria", database.KitchenOrderStatusReceived)
	store.addOrder(businessID, "João", database.KitchenOrderStatusReady)
	store.addOrder(businessID, "Ana", database.KitchenOrderStatusCancelled)
	store.addOrder(uuid.New(), "Outro", database.KitchenOrderStatusReceived)
	router := setupOrderRouter(&mockOrderService{}, store)

	rr := doAuthRequest(t, router, "GET", "/kitchen/orders", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	columns := resp["columns"].([]interface{})
	if len(columns) != len(kitchen.Stages) {
		t.Fatalf("columns: got %d, want %d", len(columns), len(kitchen.Stages))
	}
	live := 0
	for _, c := range columns {
		live += len(c.(map[string]interface{})["orders"].([]interface{}))
	}
	if live != 2 {
		t.Errorf("live orders: got %d, want 2", live)
	}
	if cancelled := resp["cancelled"].([]interface{}); len(cancelled) != 1 {
		t.Errorf("cancelled: got %d, want 1", len(cancelled))
	}
	if stage := resp["cancelled_stage"].(map[string]interface{}); stage["title"] != "Cancelados" {
		t.Errorf("cancelled_stage: got %v", stage)
	}
}

func TestOrderBoard_Search(t *testing.T) {
	store := newMockOrderStore()
	businessID := uuid.New()
	store.addOrder(businessID, "João Silva", database.KitchenOrderStatusReceived)
	store.addOrder(businessID, "Maria", database.KitchenOrderStatusReceived)
	router := setupOrderRouter(&mockOrderService{}, store)

	rr := doAuthRequest(t, router, "GET", "/kitchen/orders?q=joao", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	columns := decodeResponse(t, rr)["columns"].([]interface{})
	received := columns[0].(map[string]interface{})["orders"].([]interface{})
	if len(received) != 1 || received[0].(map[string]interface{})["customer_name"] != "João Silva" {
		t.Errorf("got %v", received)
	}
}

func TestOrderBoard_AdminTokenRejected(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, newMockOrderStore())
	rr := doAuthRequest(t, router, "GET", "/kitchen/orders", nil, adminClaims())
	wantStatus(t, rr, http.StatusUnauthorized)
}

// --- Get ---

func TestOrderGet(t *testing.T) {
	store := newMockOrderStore()
	businessID := uuid.New()
	o := store.addOrder(businessID, "Maria", database.KitchenOrderStatusPreparing)
	router := setupOrderRouter(&mockOrderService{}, store)

	rr := doAuthRequest(t, router, "GET", "/kitchen/orders/"+o.ID.String(), nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["order_number"] != kitchen.OrderNumber(o.ID) {
		t.Errorf("order_number: got %v", resp["order_number"])
	}
	if resp["total"] != "60.00" {
		t.Errorf("total: got %v", resp["total"])
	}

	rr = doAuthRequest(t, router, "GET", "/kitchen/orders/"+o.ID.String(), nil, ownerClaims(uuid.New()))
	wantStatus(t, rr, http.StatusNotFound)

	rr = doAuthRequest(t, router, "GET", "/kitchen/orders/not-a-uuid", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusBadRequest)
}

// --- Status changes ---

func TestOrderUpdateStatus(t *testing.T) {
	businessID := uuid.New()
	orderID := uuid.New()
	var gotNext database.KitchenOrderStatus
	svc := &mockOrderService{
		updateStatusFn: func(_ context.Context, bID, oID uuid.UUID, next database.KitchenOrderStatus) (database.KitchenOrder, error) {
			if bID != businessID || oID != orderID {
				t.Errorf("ids: got %s/%s", bID, oID)
			}
			gotNext = next
			return database.KitchenOrder{ID: oID, BusinessID: bID, Status: next, Total: toNumeric("10")}, nil
		},
	}
	router := setupOrderRouter(svc, newMockOrderStore())

	rr := doAuthRequest(t, router, "PATCH", "/kitchen/orders/"+orderID.String()+"/status",
		map[string]string{"status": " Preparing "}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)
	if gotNext != database.KitchenOrderStatusPreparing {
		t.Errorf("next: got %q", gotNext)
	}

	rr = doAuthRequest(t, router, "PATCH", "/kitchen/orders/"+orderID.String()+"/status",
		map[string]string{"status": "delivered"}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestOrderServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrOrderNotFound, http.StatusNotFound},
		{kitchen.ErrInvalidTransition, http.StatusBadRequest},
		{service.ErrStatusChanged, http.StatusConflict},
		{service.ErrCannotCancel, http.StatusConflict},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			fail := func(context.Context, uuid.UUID, uuid.UUID) (database.KitchenOrder, error) {
				return database.KitchenOrder{}, tt.err
			}
			router := setupOrderRouter(&mockOrderService{advanceFn: fail, cancelFn: fail}, newMockOrderStore())
			id := uuid.NewString()

			rr := doAuthRequest(t, router, "POST", "/kitchen/orders/"+id+"/advance", nil, ownerClaims(uuid.New()))
			wantStatus(t, rr, tt.want)

			rr = doAuthRequest(t, router, "POST", "/kitchen/orders/"+id+"/cancel", nil, ownerClaims(uuid.New()))
			wantStatus(t, rr, tt.want)
		})
	}
}

// --- Ticket ---

func TestOrderTicket(t *testing.T) {
	store := newMockOrderStore()
	businessID := uuid.New()
	store.users[businessID] = database.User{ID: businessID, BusinessName: "Pizzaria Bella"}
	o := store.addOrder(businessID, "Maria", database.KitchenOrderStatusReceived)
	router := setupOrderRouter(&mockOrderService{}, store)

	rr := doAuthRequest(t, router, "GET", "/kitchen/orders/"+o.ID.String()+"/ticket.pdf", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content-type: got %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}
