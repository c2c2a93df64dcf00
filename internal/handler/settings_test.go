package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/handler"
	"github.com/pedinu/api/internal/middleware"
)

// --- Mock store ---

type mockSettingsStore struct {
	users    map[uuid.UUID]database.User
	settings map[uuid.UUID]database.BusinessSetting
	created  int
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{
		users:    make(map[uuid.UUID]database.User),
		settings: make(map[uuid.UUID]database.BusinessSetting),
	}
}

func (m *mockSettingsStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockSettingsStore) GetBusinessSettings(_ context.Context, businessID uuid.UUID) (database.BusinessSetting, error) {
	s, ok := m.settings[businessID]
	if !ok {
		return database.BusinessSetting{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockSettingsStore) CreateDefaultBusinessSettings(_ context.Context, arg database.CreateDefaultBusinessSettingsParams) (database.BusinessSetting, error) {
	m.created++
	s := database.BusinessSetting{
		BusinessID:    arg.BusinessID,
		IsOpen:        true,
		Description:   arg.Description,
		DeliveryFee:   toNumeric("0"),
		MinOrderValue: toNumeric("0"),
		UpdatedAt:     time.Now(),
	}
	m.settings[arg.BusinessID] = s
	return s, nil
}

func (m *mockSettingsStore) UpdateBusinessSettings(_ context.Context, arg database.UpdateBusinessSettingsParams) (database.BusinessSetting, error) {
	s, ok := m.settings[arg.BusinessID]
	if !ok {
		return database.BusinessSetting{}, pgx.ErrNoRows
	}
	s.Description = arg.Description
	s.Address = arg.Address
	s.Phone = arg.Phone
	s.Whatsapp = arg.Whatsapp
	s.LogoUrl = arg.LogoUrl
	s.BannerUrl = arg.BannerUrl
	s.DeliveryFee = arg.DeliveryFee
	s.MinOrderValue = arg.MinOrderValue
	s.MercadopagoPublicKey = arg.MercadopagoPublicKey
	if arg.MercadopagoAccessToken.Valid {
		s.MercadopagoAccessToken = arg.MercadopagoAccessToken
	}
	m.settings[arg.BusinessID] = s
	return s, nil
}

func (m *mockSettingsStore) SetBusinessOpen(_ context.Context, arg database.SetBusinessOpenParams) (database.BusinessSetting, error) {
	s, ok := m.settings[arg.BusinessID]
	if !ok {
		return database.BusinessSetting{}, pgx.ErrNoRows
	}
	s.IsOpen = arg.IsOpen
	m.settings[arg.BusinessID] = s
	return s, nil
}

// --- Helpers ---

func setupSettingsRouter(store *mockSettingsStore) *chi.Mux {
	h := handler.NewSettingsHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/settings", h.RegisterRoutes)
	return r
}

func seedSettingsOwner(store *mockSettingsStore) uuid.UUID {
	id := uuid.New()
	store.users[id] = database.User{ID: id, BusinessName: "Pizzaria Bella", Role: enum.UserRoleOwner}
	return id
}

// --- Tests ---

func TestSettingsGet_CreatesDefaults(t *testing.T) {
	store := newMockSettingsStore()
	businessID := seedSettingsOwner(store)
	router := setupSettingsRouter(store)

	rr := doAuthRequest(t, router, "GET", "/settings", nil, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["description"] != "Bem-vindo ao Pizzaria Bella!" {
		t.Errorf("description: got %v", resp["description"])
	}
	if resp["is_open"] != true {
		t.Errorf("is_open: got %v, want true", resp["is_open"])
	}
	if store.created != 1 {
		t.Errorf("created: got %d, want 1", store.created)
	}

	doAuthRequest(t, router, "GET", "/settings", nil, ownerClaims(businessID))
	if store.created != 1 {
		t.Errorf("second read must not recreate, created=%d", store.created)
	}
}

func TestSettingsGet_Unauthenticated(t *testing.T) {
	router := setupSettingsRouter(newMockSettingsStore())
	rr := doRequest(t, router, "GET", "/settings", nil)
	wantStatus(t, rr, http.StatusUnauthorized)
}

func TestSettingsUpdate_HidesAccessToken(t *testing.T) {
	store := newMockSettingsStore()
	businessID := seedSettingsOwner(store)
	router := setupSettingsRouter(store)

	rr := doAuthRequest(t, router, "PUT", "/settings", map[string]string{
		"whatsapp":                 "11999998888",
		"delivery_fee":             "5,50",
		"min_order_value":          "20",
		"mercadopago_access_token": "APP_USR-secret",
	}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["delivery_fee"] != "5.50" {
		t.Errorf("delivery_fee: got %v, want 5.50", resp["delivery_fee"])
	}
	if resp["min_order_value"] != "20.00" {
		t.Errorf("min_order_value: got %v, want 20.00", resp["min_order_value"])
	}
	if resp["has_mercadopago_token"] != true {
		t.Errorf("has_mercadopago_token: got %v", resp["has_mercadopago_token"])
	}
	if _, ok := resp["mercadopago_access_token"]; ok {
		t.Error("access token must not be returned")
	}

	// An empty token keeps the stored one.
	rr = doAuthRequest(t, router, "PUT", "/settings", map[string]string{"whatsapp": "11999998888"}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)
	if store.settings[businessID].MercadopagoAccessToken.String != "APP_USR-secret" {
		t.Error("stored token was cleared")
	}
}

func TestSettingsUpdate_NegativeFee(t *testing.T) {
	store := newMockSettingsStore()
	businessID := seedSettingsOwner(store)
	router := setupSettingsRouter(store)

	rr := doAuthRequest(t, router, "PUT", "/settings", map[string]string{"delivery_fee": "-1"}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestSettingsSetOpen(t *testing.T) {
	store := newMockSettingsStore()
	businessID := seedSettingsOwner(store)
	router := setupSettingsRouter(store)

	rr := doAuthRequest(t, router, "PATCH", "/settings/open", map[string]bool{"is_open": false}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusOK)
	if store.settings[businessID].IsOpen {
		t.Error("expected business closed")
	}

	rr = doAuthRequest(t, router, "PATCH", "/settings/open", map[string]string{}, ownerClaims(businessID))
	wantStatus(t, rr, http.StatusBadRequest)
}
