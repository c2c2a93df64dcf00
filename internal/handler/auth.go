package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pedinu/api/internal/auth"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/service"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// RegisterStore is the transactional half of registration.
// Satisfied by *database.Queries.
type RegisterStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	CreateDefaultBusinessSettings(ctx context.Context, arg database.CreateDefaultBusinessSettingsParams) (database.BusinessSetting, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store       AuthStore
	pool        service.TxBeginner
	newRegStore func(db database.DBTX) RegisterStore
	jwtSecret   string
}

// NewAuthHandler creates a new AuthHandler. Registration runs the user and
// settings inserts in one transaction started on pool.
func NewAuthHandler(store AuthStore, pool service.TxBeginner, newRegStore func(db database.DBTX) RegisterStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, pool: pool, newRegStore: newRegStore, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	BusinessSlug string `json:"business_slug"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const minPasswordLength = 6

// --- Handlers ---

// Register creates an owner account with default business settings.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	req.BusinessSlug = strings.ToLower(strings.TrimSpace(req.BusinessSlug))

	if req.Email == "" || req.BusinessName == "" || req.BusinessSlug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, business_name and business_slug are required"})
		return
	}
	if len(req.Password) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("password must be at least %d characters", minPasswordLength)})
		return
	}
	if !slugPattern.MatchString(req.BusinessSlug) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "business_slug may contain only lowercase letters, digits and dashes"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := h.createOwner(r.Context(), req, string(hashed))
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email or business_slug already in use"})
			return
		}
		log.Printf("ERROR: register owner: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.respondWithTokens(w, http.StatusCreated, user)
}

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: login lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if user.Status != enum.UserStatusActive {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "account is " + user.Status})
		return
	}

	h.respondWithTokens(w, http.StatusOK, user)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: refresh lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if user.Status != enum.UserStatusActive {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "account is " + user.Status})
		return
	}

	h.respondWithTokens(w, http.StatusOK, user)
}

// --- Helpers ---

func (h *AuthHandler) createOwner(ctx context.Context, req registerRequest, hashed string) (database.User, error) {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return database.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := h.newRegStore(tx)

	user, err := store.CreateUser(ctx, database.CreateUserParams{
		Email:          req.Email,
		HashedPassword: hashed,
		BusinessName:   req.BusinessName,
		BusinessSlug:   req.BusinessSlug,
		Role:           enum.UserRoleOwner,
		Status:         enum.UserStatusActive,
	})
	if err != nil {
		return database.User{}, fmt.Errorf("create user: %w", err)
	}

	if _, err := store.CreateDefaultBusinessSettings(ctx, database.CreateDefaultBusinessSettingsParams{
		BusinessID:  user.ID,
		Description: database.Text(defaultDescription(user.BusinessName)),
	}); err != nil {
		return database.User{}, fmt.Errorf("create settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.User{}, fmt.Errorf("commit tx: %w", err)
	}
	return user, nil
}

// businessIDFor is the business a user's token is bound to; admins have none.
func businessIDFor(user database.User) uuid.UUID {
	if user.Role == enum.UserRoleOwner {
		return user.ID
	}
	return uuid.Nil
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, user database.User) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, businessIDFor(user), user.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
