package handler_test

import (
	"context"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/handler"
	"github.com/pedinu/api/internal/middleware"
)

// --- Mock store ---

// mockMenuStore backs both the category and product handlers so deletes
// can be checked against the products they detach.
type mockMenuStore struct {
	categories map[uuid.UUID]database.Category
	products   map[uuid.UUID]database.Product
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		categories: make(map[uuid.UUID]database.Category),
		products:   make(map[uuid.UUID]database.Product),
	}
}

func (m *mockMenuStore) ListCategoriesByBusiness(_ context.Context, businessID uuid.UUID) ([]database.Category, error) {
	result := []database.Category{}
	for _, c := range m.categories {
		if c.BusinessID == businessID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

func (m *mockMenuStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	next := int32(0)
	for _, c := range m.categories {
		if c.BusinessID == arg.BusinessID && c.OrderIndex >= next {
			next = c.OrderIndex + 1
		}
	}
	c := database.Category{
		ID:         uuid.New(),
		BusinessID: arg.BusinessID,
		Name:       arg.Name,
		OrderIndex: next,
		CreatedAt:  time.Now(),
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockMenuStore) UpdateCategory(_ context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	c, ok := m.categories[arg.ID]
	if !ok || c.BusinessID != arg.BusinessID {
		return database.Category{}, pgx.ErrNoRows
	}
	c.Name = arg.Name
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockMenuStore) ClearProductsCategory(_ context.Context, arg database.ClearProductsCategoryParams) error {
	for id, p := range m.products {
		if p.BusinessID == arg.BusinessID && p.CategoryID == arg.CategoryID {
			p.CategoryID.Valid = false
			m.products[id] = p
		}
	}
	return nil
}

func (m *mockMenuStore) DeleteCategory(_ context.Context, arg database.DeleteCategoryParams) (uuid.UUID, error) {
	c, ok := m.categories[arg.ID]
	if !ok || c.BusinessID != arg.BusinessID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.categories, arg.ID)
	return arg.ID, nil
}

func (m *mockMenuStore) SetCategoryOrder(_ context.Context, arg database.SetCategoryOrderParams) (int64, error) {
	c, ok := m.categories[arg.ID]
	if !ok || c.BusinessID != arg.BusinessID {
		return 0, nil
	}
	c.OrderIndex = arg.OrderIndex
	m.categories[c.ID] = c
	return 1, nil
}

func (m *mockMenuStore) addCategory(businessID uuid.UUID, name string, order int32) database.Category {
	c := database.Category{ID: uuid.New(), BusinessID: businessID, Name: name, OrderIndex: order, CreatedAt: time.Now()}
	m.categories[c.ID] = c
	return c
}

// --- Helpers ---

func setupCategoryRouter(store *mockMenuStore, pool *mockPool) *chi.Mux {
	h := handler.NewCategoryHandler(store, pool, func(database.DBTX) handler.CategoryStore { return store })
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/categories", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestCategoryCreate_AppendsAtEnd(t *testing.T) {
	store := newMockMenuStore()
	businessID := uuid.New()
	store.addCategory(businessID, "Pizzas", 0)
	router := setupCategoryRouter(store, &mockPool{})

	rr := doAuthRequest(t, router, "POST", "/categories", map[string]string{"name": "  Bebidas "}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["name"] != "Bebidas" {
		t.Errorf("name: got %v, want Bebidas", resp["name"])
	}
	if resp["order_index"] != float64(1) {
		t.Errorf("order_index: got %v, want 1", resp["order_index"])
	}
}

func TestCategoryCreate_EmptyName(t *testing.T) {
	router := setupCategoryRouter(newMockMenuStore(), &mockPool{})
	rr := doAuthRequest(t, router, "POST", "/categories", map[string]string{"name": " "}, ownerClaims(uuid.New()))
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestCategoryList_ScopedToBusiness(t *testing.T) {
	store := newMockMenuStore()
	businessID := uuid.New()
	store.addCategory(businessID, "Bebidas", 1)
	store.addCategory(businessID, "Pizzas", 0)
	store.addCategory(uuid.New(), "Outro", 0)
	router := setupCategoryRouter(store, &mockPool{})

	rr := doAuthRequest(t, router, "GET", "/categories", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	list := decodeListResponse(t, rr)
	if len(list) != 2 {
		t.Fatalf("len: got %d, want 2", len(list))
	}
	if list[0]["name"] != "Pizzas" {
		t.Errorf("first: got %v, want Pizzas", list[0]["name"])
	}
}

func TestCategoryUpdate_OtherBusiness(t *testing.T) {
	store := newMockMenuStore()
	c := store.addCategory(uuid.New(), "Pizzas", 0)
	router := setupCategoryRouter(store, &mockPool{})

	rr := doAuthRequest(t, router, "PUT", "/categories/"+c.ID.String(), map[string]string{"name": "X"}, ownerClaims(uuid.New()))
	wantStatus(t, rr, http.StatusNotFound)
}

func TestCategoryDelete_DetachesProducts(t *testing.T) {
	store := newMockMenuStore()
	businessID := uuid.New()
	c := store.addCategory(businessID, "Pizzas", 0)
	p := store.addProduct(businessID, &c.ID, "Margherita", "30", true)
	pool := &mockPool{}
	router := setupCategoryRouter(store, pool)

	rr := doAuthRequest(t, router, "DELETE", "/categories/"+c.ID.String(), nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusNoContent)

	if _, ok := store.categories[c.ID]; ok {
		t.Error("category still present")
	}
	if store.products[p.ID].CategoryID.Valid {
		t.Error("product still linked to deleted category")
	}
	if !pool.tx.committed {
		t.Error("expected committed transaction")
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	pool := &mockPool{}
	router := setupCategoryRouter(newMockMenuStore(), pool)

	rr := doAuthRequest(t, router, "DELETE", "/categories/"+uuid.New().String(), nil, ownerClaims(uuid.New()))
	wantStatus(t, rr, http.StatusNotFound)
	if pool.tx.committed {
		t.Error("transaction must roll back")
	}
}

func TestCategoryReorder(t *testing.T) {
	store := newMockMenuStore()
	businessID := uuid.New()
	a := store.addCategory(businessID, "A", 0)
	b := store.addCategory(businessID, "B", 1)
	router := setupCategoryRouter(store, &mockPool{})

	rr := doAuthRequest(t, router, "PUT", "/categories/order", map[string]interface{}{
		"ids": []uuid.UUID{b.ID, a.ID},
	}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	list := decodeListResponse(t, rr)
	if list[0]["name"] != "B" || list[1]["name"] != "A" {
		t.Errorf("order: got %v, %v", list[0]["name"], list[1]["name"])
	}
}

func TestCategoryReorder_UnknownID(t *testing.T) {
	store := newMockMenuStore()
	businessID := uuid.New()
	a := store.addCategory(businessID, "A", 0)
	router := setupCategoryRouter(store, &mockPool{})

	rr := doAuthRequest(t, router, "PUT", "/categories/order", map[string]interface{}{
		"ids": []uuid.UUID{a.ID, uuid.New()},
	}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusBadRequest)
}
