package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedinu/api/internal/auth"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/handler"
)

// --- Mock store ---

type mockAuthStore struct {
	userByEmail map[string]database.User
	userByID    map[uuid.UUID]database.User
	settings    map[uuid.UUID]database.CreateDefaultBusinessSettingsParams
	createErr   error
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		userByEmail: make(map[string]database.User),
		userByID:    make(map[uuid.UUID]database.User),
		settings:    make(map[uuid.UUID]database.CreateDefaultBusinessSettingsParams),
	}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByEmail[u.Email] = u
	m.userByID[u.ID] = u
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.userByEmail[email]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.userByID[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	if m.createErr != nil {
		return database.User{}, m.createErr
	}
	if _, ok := m.userByEmail[arg.Email]; ok {
		return database.User{}, errUniqueViolation
	}
	u := database.User{
		ID:             uuid.New(),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		BusinessName:   arg.BusinessName,
		BusinessSlug:   arg.BusinessSlug,
		Role:           arg.Role,
		Status:         arg.Status,
		CreatedAt:      time.Now(),
	}
	m.addUser(u)
	return u, nil
}

func (m *mockAuthStore) CreateDefaultBusinessSettings(_ context.Context, arg database.CreateDefaultBusinessSettingsParams) (database.BusinessSetting, error) {
	m.settings[arg.BusinessID] = arg
	return database.BusinessSetting{BusinessID: arg.BusinessID, IsOpen: true, Description: arg.Description}, nil
}

// --- Helpers ---

func setupAuthRouter(store *mockAuthStore, pool *mockPool) *chi.Mux {
	h := handler.NewAuthHandler(store, pool, func(database.DBTX) handler.RegisterStore { return store }, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func seedOwner(t *testing.T, store *mockAuthStore, status string) database.User {
	t.Helper()
	u := database.User{
		ID:             uuid.New(),
		Email:          "dono@pizzaria.com",
		HashedPassword: hashPassword(t, "segredo123"),
		BusinessName:   "Pizzaria Bella",
		BusinessSlug:   "pizzaria-bella",
		Role:           enum.UserRoleOwner,
		Status:         status,
		CreatedAt:      time.Now(),
	}
	store.addUser(u)
	return u
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	store := newMockAuthStore()
	pool := &mockPool{}
	router := setupAuthRouter(store, pool)

	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":         "  Dono@Pizzaria.com ",
		"password":      "segredo123",
		"business_name": "Pizzaria Bella",
		"business_slug": "pizzaria-bella",
	})
	wantStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["access_token"] == "" || resp["refresh_token"] == "" {
		t.Fatalf("expected tokens, got %v", resp)
	}
	user := resp["user"].(map[string]interface{})
	if user["email"] != "dono@pizzaria.com" {
		t.Errorf("email: got %v, want lowercased", user["email"])
	}
	if user["role"] != enum.UserRoleOwner || user["status"] != enum.UserStatusActive {
		t.Errorf("role/status: got %v/%v", user["role"], user["status"])
	}

	id, _ := uuid.Parse(user["id"].(string))
	settings, ok := store.settings[id]
	if !ok {
		t.Fatal("expected default settings row")
	}
	if settings.Description.String != "Bem-vindo ao Pizzaria Bella!" {
		t.Errorf("description: got %q", settings.Description.String)
	}
	if pool.tx == nil || !pool.tx.committed {
		t.Error("expected committed transaction")
	}

	claims, err := auth.ValidateToken(testJWTSecret, resp["access_token"].(string))
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.BusinessID != id {
		t.Errorf("business_id claim: got %s, want %s", claims.BusinessID, id)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"password": "segredo123", "business_name": "X", "business_slug": "x"}},
		{"short password", map[string]string{"email": "a@b.com", "password": "123", "business_name": "X", "business_slug": "x"}},
		{"bad slug", map[string]string{"email": "a@b.com", "password": "segredo123", "business_name": "X", "business_slug": "pizza bella!"}},
		{"trailing dash", map[string]string{"email": "a@b.com", "password": "segredo123", "business_name": "X", "business_slug": "pizza-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthRouter(newMockAuthStore(), &mockPool{})
			rr := doRequest(t, router, "POST", "/auth/register", tt.body)
			wantStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	store := newMockAuthStore()
	seedOwner(t, store, enum.UserStatusActive)
	pool := &mockPool{}
	router := setupAuthRouter(store, pool)

	rr := doRequest(t, router, "POST", "/auth/register", map[string]string{
		"email":         "dono@pizzaria.com",
		"password":      "segredo123",
		"business_name": "Outra",
		"business_slug": "outra",
	})
	wantStatus(t, rr, http.StatusConflict)
	if pool.tx.committed {
		t.Error("transaction must not commit on conflict")
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	store := newMockAuthStore()
	owner := seedOwner(t, store, enum.UserStatusActive)
	router := setupAuthRouter(store, &mockPool{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "DONO@pizzaria.com",
		"password": "segredo123",
	})
	wantStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	user := resp["user"].(map[string]interface{})
	if user["id"] != owner.ID.String() {
		t.Errorf("user id: got %v, want %s", user["id"], owner.ID)
	}
	if _, ok := user["hashed_password"]; ok {
		t.Error("password hash must not be exposed")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockAuthStore()
	seedOwner(t, store, enum.UserStatusActive)
	router := setupAuthRouter(store, &mockPool{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "dono@pizzaria.com",
		"password": "errada",
	})
	wantStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	router := setupAuthRouter(newMockAuthStore(), &mockPool{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "ninguem@x.com",
		"password": "segredo123",
	})
	wantStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_InactiveAccount(t *testing.T) {
	store := newMockAuthStore()
	seedOwner(t, store, enum.UserStatusInactive)
	router := setupAuthRouter(store, &mockPool{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "dono@pizzaria.com",
		"password": "segredo123",
	})
	wantStatus(t, rr, http.StatusForbidden)
}

func TestLogin_AdminHasNoBusiness(t *testing.T) {
	store := newMockAuthStore()
	admin := database.User{
		ID:             uuid.New(),
		Email:          "admin@pedinu.com",
		HashedPassword: hashPassword(t, "admin123"),
		Role:           enum.UserRoleAdmin,
		Status:         enum.UserStatusActive,
	}
	store.addUser(admin)
	router := setupAuthRouter(store, &mockPool{})

	rr := doRequest(t, router, "POST", "/auth/login", map[string]string{
		"email":    "admin@pedinu.com",
		"password": "admin123",
	})
	wantStatus(t, rr, http.StatusOK)

	claims, err := auth.ValidateToken(testJWTSecret, decodeResponse(t, rr)["access_token"].(string))
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.BusinessID != uuid.Nil {
		t.Errorf("admin business_id: got %s, want nil", claims.BusinessID)
	}
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	store := newMockAuthStore()
	owner := seedOwner(t, store, enum.UserStatusActive)
	router := setupAuthRouter(store, &mockPool{})

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, owner.ID)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	wantStatus(t, rr, http.StatusOK)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	store := newMockAuthStore()
	owner := seedOwner(t, store, enum.UserStatusActive)
	router := setupAuthRouter(store, &mockPool{})

	access, _ := auth.GenerateToken(testJWTSecret, owner.ID, owner.ID, owner.Role)
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{"refresh_token": access})
	wantStatus(t, rr, http.StatusUnauthorized)
}

func TestRefresh_SuspendedAccount(t *testing.T) {
	store := newMockAuthStore()
	owner := seedOwner(t, store, enum.UserStatusPending)
	router := setupAuthRouter(store, &mockPool{})

	refresh, _ := auth.GenerateRefreshToken(testJWTSecret, owner.ID)
	rr := doRequest(t, router, "POST", "/auth/refresh", map[string]string{"refresh_token": refresh})
	wantStatus(t, rr, http.StatusForbidden)
}
