package handler_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/cart"
	"github.com/pedinu/api/internal/checkout"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/handler"
	"github.com/pedinu/api/internal/payment"
	"github.com/pedinu/api/internal/views"
)

// --- Mocks ---

type mockCatalogStore struct {
	*mockMenuStore
	*mockZoneStore
	owner   database.User
	catalog database.GetCatalogBySlugRow
}

func (m *mockCatalogStore) GetCatalogBySlug(_ context.Context, slug string) (database.GetCatalogBySlugRow, error) {
	if slug != m.owner.BusinessSlug || m.owner.Status != enum.UserStatusActive {
		return database.GetCatalogBySlugRow{}, pgx.ErrNoRows
	}
	return m.catalog, nil
}

func (m *mockCatalogStore) GetUserBySlug(_ context.Context, slug string) (database.User, error) {
	if slug != m.owner.BusinessSlug {
		return database.User{}, pgx.ErrNoRows
	}
	return m.owner, nil
}

type mockCheckout struct {
	req checkout.Request
	res *checkout.Result
	err error
}

func (m *mockCheckout) Checkout(_ context.Context, req checkout.Request) (*checkout.Result, error) {
	m.req = req
	return m.res, m.err
}

type catalogFixture struct {
	store    *mockCatalogStore
	carts    *cart.MemoryStore
	counter  *views.MemoryCounter
	checkout *mockCheckout
	router   *chi.Mux
}

func newCatalogFixture() *catalogFixture {
	owner := database.User{
		ID:           uuid.New(),
		BusinessName: "Pizzaria Bella",
		BusinessSlug: "pizzaria-bella",
		Role:         enum.UserRoleOwner,
		Status:       enum.UserStatusActive,
	}
	f := &catalogFixture{
		store: &mockCatalogStore{
			mockMenuStore: newMockMenuStore(),
			mockZoneStore: newMockZoneStore(),
			owner:         owner,
		},
		carts:    cart.NewMemoryStore(time.Hour),
		counter:  views.NewMemoryCounter(),
		checkout: &mockCheckout{},
	}

	h := handler.NewCatalogHandler(f.store, f.carts, f.counter, f.checkout)
	f.router = chi.NewRouter()
	f.router.Route("/public/{slug}", h.RegisterRoutes)
	return f
}

func (f *catalogFixture) businessID() uuid.UUID { return f.store.owner.ID }

// --- Catalog ---

func TestCatalog_FiltersAndCountsView(t *testing.T) {
	f := newCatalogFixture()
	pizzas := uuid.New()
	empty := uuid.New()
	f.store.catalog = database.GetCatalogBySlugRow{
		BusinessID:    f.businessID(),
		BusinessName:  "Pizzaria Bella",
		BusinessSlug:  "pizzaria-bella",
		IsOpen:        true,
		DeliveryFee:   toNumeric("0"),
		MinOrderValue: toNumeric("20"),
		Categories: []byte(`[
			{"id":"` + pizzas.String() + `","name":"Pizzas","order_index":0},
			{"id":"` + empty.String() + `","name":"Vazia","order_index":1}
		]`),
		Products: []byte(`[
			{"id":"` + uuid.NewString() + `","category_id":"` + pizzas.String() + `","name":"Margherita","price":35.9,"is_available":true,"order_index":1},
			{"id":"` + uuid.NewString() + `","category_id":"` + pizzas.String() + `","name":"Calabresa","price":32,"is_available":true,"order_index":0},
			{"id":"` + uuid.NewString() + `","category_id":"` + empty.String() + `","name":"Esgotada","price":10,"is_available":false,"order_index":0},
			{"id":"` + uuid.NewString() + `","category_id":null,"name":"Solta","price":5,"is_available":true,"order_index":0}
		]`),
	}
	f.store.addZone(f.businessID(), "Centro", "5")

	rr := doRequest(t, f.router, "GET", "/public/pizzaria-bella", nil)
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	categories := resp["categories"].([]interface{})
	if len(categories) != 1 {
		t.Fatalf("categories: got %d, want 1 (empty and unavailable dropped)", len(categories))
	}
	products := categories[0].(map[string]interface{})["products"].([]interface{})
	if len(products) != 2 {
		t.Fatalf("products: got %d, want 2", len(products))
	}
	if first := products[0].(map[string]interface{})["name"]; first != "Calabresa" {
		t.Errorf("first product: got %v, want Calabresa", first)
	}
	if resp["min_order_value"] != "20.00" {
		t.Errorf("min_order_value: got %v", resp["min_order_value"])
	}
	if methods := resp["payment_methods"].([]interface{}); len(methods) != 4 {
		t.Errorf("payment_methods: got %v", methods)
	}
	if zones := resp["zones"].([]interface{}); len(zones) != 1 {
		t.Errorf("zones: got %v", zones)
	}

	counts, _ := f.counter.Drain(context.Background())
	if counts[f.businessID()] != 1 {
		t.Errorf("views: got %d, want 1", counts[f.businessID()])
	}
}

func TestCatalog_UnknownSlug(t *testing.T) {
	f := newCatalogFixture()
	rr := doRequest(t, f.router, "GET", "/public/nao-existe", nil)
	wantStatus(t, rr, http.StatusNotFound)
}

func TestSearchZones_AccentInsensitive(t *testing.T) {
	f := newCatalogFixture()
	f.store.addZone(f.businessID(), "São José", "7")
	f.store.addZone(f.businessID(), "Centro", "5")

	rr := doRequest(t, f.router, "GET", "/public/pizzaria-bella/zones?q=sao", nil)
	wantStatus(t, rr, http.StatusOK)

	list := decodeListResponse(t, rr)
	if len(list) != 1 || list[0]["neighborhood_name"] != "São José" {
		t.Errorf("got %v", list)
	}
}

func TestPublicRoutes_InactiveBusiness(t *testing.T) {
	f := newCatalogFixture()
	f.store.owner.Status = enum.UserStatusInactive

	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/carts", nil)
	wantStatus(t, rr, http.StatusNotFound)
}

// --- Cart ---

func TestCart_AddAndRemove(t *testing.T) {
	f := newCatalogFixture()
	p := f.store.addProduct(f.businessID(), nil, "Margherita", "30", true)

	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/carts", nil)
	wantStatus(t, rr, http.StatusCreated)
	cartID := decodeResponse(t, rr)["id"].(string)
	base := "/public/pizzaria-bella/carts/" + cartID

	doRequest(t, f.router, "POST", base+"/items", map[string]string{"product_id": p.ID.String()})
	rr = doRequest(t, f.router, "POST", base+"/items", map[string]string{"product_id": p.ID.String()})
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["item_count"] != float64(2) || resp["total"] != "60.00" {
		t.Errorf("after add: got %v", resp)
	}

	rr = doRequest(t, f.router, "DELETE", base+"/items/"+p.ID.String(), nil)
	wantStatus(t, rr, http.StatusOK)
	if total := decodeResponse(t, rr)["total"]; total != "30.00" {
		t.Errorf("after remove: total %v, want 30.00", total)
	}

	rr = doRequest(t, f.router, "GET", base, nil)
	wantStatus(t, rr, http.StatusOK)
	if count := decodeResponse(t, rr)["item_count"]; count != float64(1) {
		t.Errorf("persisted item_count: got %v, want 1", count)
	}
}

// slowCartStore widens the window between reading and writing a cart, as a
// remote store would.
type slowCartStore struct {
	*cart.MemoryStore
}

func (s slowCartStore) Get(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	time.Sleep(time.Millisecond)
	return s.MemoryStore.Get(ctx, id)
}

func TestCart_ConcurrentAddsKeepEveryUnit(t *testing.T) {
	f := newCatalogFixture()
	p := f.store.addProduct(f.businessID(), nil, "Margherita", "30", true)
	h := handler.NewCatalogHandler(f.store, slowCartStore{f.carts}, f.counter, f.checkout)
	router := chi.NewRouter()
	router.Route("/public/{slug}", h.RegisterRoutes)

	c := cart.New(f.businessID())
	if err := f.carts.Save(context.Background(), c); err != nil {
		t.Fatalf("save cart: %v", err)
	}
	path := "/public/pizzaria-bella/carts/" + c.ID.String() + "/items"

	const adds = 10
	var wg sync.WaitGroup
	statuses := make([]int, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = doRequest(t, router, "POST", path, map[string]string{"product_id": p.ID.String()}).Code
		}(i)
	}
	wg.Wait()

	for i, code := range statuses {
		if code != http.StatusOK {
			t.Errorf("add %d: status %d", i, code)
		}
	}
	stored, err := f.carts.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if got := stored.Quantity(p.ID); got != adds {
		t.Errorf("quantity: got %d, want %d", got, adds)
	}
}

func TestCart_UnavailableProduct(t *testing.T) {
	f := newCatalogFixture()
	p := f.store.addProduct(f.businessID(), nil, "Esgotada", "30", false)
	c := cart.New(f.businessID())
	_ = f.carts.Save(context.Background(), c)

	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/carts/"+c.ID.String()+"/items",
		map[string]string{"product_id": p.ID.String()})
	wantStatus(t, rr, http.StatusConflict)
}

func TestCart_OtherBusinessCart(t *testing.T) {
	f := newCatalogFixture()
	c := cart.New(uuid.New())
	_ = f.carts.Save(context.Background(), c)

	rr := doRequest(t, f.router, "GET", "/public/pizzaria-bella/carts/"+c.ID.String(), nil)
	wantStatus(t, rr, http.StatusNotFound)
}

// --- Checkout ---

func TestCheckout_PassesCustomer(t *testing.T) {
	f := newCatalogFixture()
	f.checkout.res = &checkout.Result{Kind: "payment", PaymentURL: "https://mp/checkout", Total: "35.00"}
	cartID := uuid.New()

	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/checkout", map[string]string{
		"cart_id":        cartID.String(),
		"name":           " Maria ",
		"phone":          "11999998888",
		"neighborhood":   "Centro",
		"address":        "Rua A, 1",
		"payment_method": "Pix",
	})
	wantStatus(t, rr, http.StatusOK)

	if f.checkout.req.CartID != cartID || f.checkout.req.BusinessID != f.businessID() {
		t.Errorf("request ids: got %+v", f.checkout.req)
	}
	if f.checkout.req.Customer.Name != "Maria" {
		t.Errorf("name not trimmed: %q", f.checkout.req.Customer.Name)
	}
	if url := decodeResponse(t, rr)["payment_url"]; url != "https://mp/checkout" {
		t.Errorf("payment_url: got %v", url)
	}
}

func TestCheckout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &checkout.ValidationError{Fields: map[string]string{"name": "required"}}, http.StatusUnprocessableEntity},
		{"cart missing", checkout.ErrCartNotFound, http.StatusNotFound},
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"in progress", checkout.ErrCheckoutInProgress, http.StatusConflict},
		{"closed", checkout.ErrBusinessClosed, http.StatusUnprocessableEntity},
		{"below minimum", checkout.ErrBelowMinimum, http.StatusUnprocessableEntity},
		{"no whatsapp", checkout.ErrWhatsAppNotConfigured, http.StatusUnprocessableEntity},
		{"no gateway token", payment.ErrMissingAccessToken, http.StatusUnprocessableEntity},
		{"gateway", &payment.APIError{StatusCode: 400, Message: "bad"}, http.StatusBadGateway},
		{"persist", &checkout.PersistError{Message: "Erro ao salvar pedido"}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			f.checkout.err = tt.err

			rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/checkout", map[string]string{
				"cart_id": uuid.NewString(),
			})
			wantStatus(t, rr, tt.want)
		})
	}
}

func TestCheckout_ValidationBody(t *testing.T) {
	f := newCatalogFixture()
	f.checkout.err = &checkout.ValidationError{
		Fields:      map[string]string{"neighborhood": "not served"},
		Suggestions: []string{"Centro"},
	}

	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/checkout", map[string]string{"cart_id": uuid.NewString()})
	wantStatus(t, rr, http.StatusUnprocessableEntity)

	resp := decodeResponse(t, rr)
	fields := resp["fields"].(map[string]interface{})
	if fields["neighborhood"] != "not served" {
		t.Errorf("fields: got %v", fields)
	}
	if s := resp["suggestions"].([]interface{}); len(s) != 1 || s[0] != "Centro" {
		t.Errorf("suggestions: got %v", s)
	}
}

func TestCheckout_MissingCartID(t *testing.T) {
	f := newCatalogFixture()
	rr := doRequest(t, f.router, "POST", "/public/pizzaria-bella/checkout", map[string]string{"name": "Maria"})
	wantStatus(t, rr, http.StatusBadRequest)
}
