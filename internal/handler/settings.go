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
)

// SettingsStore defines the database methods needed by settings handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SettingsStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetBusinessSettings(ctx context.Context, businessID uuid.UUID) (database.BusinessSetting, error)
	CreateDefaultBusinessSettings(ctx context.Context, arg database.CreateDefaultBusinessSettingsParams) (database.BusinessSetting, error)
	UpdateBusinessSettings(ctx context.Context, arg database.UpdateBusinessSettingsParams) (database.BusinessSetting, error)
	SetBusinessOpen(ctx context.Context, arg database.SetBusinessOpenParams) (database.BusinessSetting, error)
}

// SettingsHandler serves the owner's business settings.
type SettingsHandler struct {
	store SettingsStore
}

func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes is mounted at /settings.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Patch("/open", h.SetOpen)
}

// --- Request / Response types ---

type updateSettingsRequest struct {
	Description          string `json:"description"`
	Address              string `json:"address"`
	Phone                string `json:"phone"`
	Whatsapp             string `json:"whatsapp"`
	LogoURL              string `json:"logo_url"`
	BannerURL            string `json:"banner_url"`
	DeliveryFee          string `json:"delivery_fee"`
	MinOrderValue        string `json:"min_order_value"`
	MercadopagoPublicKey string `json:"mercadopago_public_key"`
	// Empty keeps the stored token.
	MercadopagoAccessToken string `json:"mercadopago_access_token"`
}

type setOpenRequest struct {
	IsOpen *bool `json:"is_open"`
}

type settingsResponse struct {
	BusinessID           uuid.UUID `json:"business_id"`
	IsOpen               bool      `json:"is_open"`
	Description          *string   `json:"description"`
	Address              *string   `json:"address"`
	Phone                *string   `json:"phone"`
	Whatsapp             *string   `json:"whatsapp"`
	LogoURL              *string   `json:"logo_url"`
	BannerURL            *string   `json:"banner_url"`
	DeliveryFee          string    `json:"delivery_fee"`
	MinOrderValue        string    `json:"min_order_value"`
	MercadopagoPublicKey *string   `json:"mercadopago_public_key"`
	HasMercadopagoToken  bool      `json:"has_mercadopago_token"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toSettingsResponse(s database.BusinessSetting) settingsResponse {
	return settingsResponse{
		BusinessID:           s.BusinessID,
		IsOpen:               s.IsOpen,
		Description:          textPtr(s.Description),
		Address:              textPtr(s.Address),
		Phone:                textPtr(s.Phone),
		Whatsapp:             textPtr(s.Whatsapp),
		LogoURL:              textPtr(s.LogoUrl),
		BannerURL:            textPtr(s.BannerUrl),
		DeliveryFee:          money(s.DeliveryFee),
		MinOrderValue:        money(s.MinOrderValue),
		MercadopagoPublicKey: textPtr(s.MercadopagoPublicKey),
		HasMercadopagoToken:  s.MercadopagoAccessToken.Valid && s.MercadopagoAccessToken.String != "",
		UpdatedAt:            s.UpdatedAt,
	}
}

// --- Handlers ---

// Get returns the settings, creating the default row on first access.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	settings, err := h.load(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "business not found"})
			return
		}
		log.Printf("ERROR: get settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// Update replaces the editable settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	deliveryFee, err := optionalMoney(req.DeliveryFee)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_fee must be a non-negative amount"})
		return
	}
	minOrder, err := optionalMoney(req.MinOrderValue)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_order_value must be a non-negative amount"})
		return
	}

	if _, err := h.load(r.Context(), businessID); err != nil {
		log.Printf("ERROR: ensure settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	settings, err := h.store.UpdateBusinessSettings(r.Context(), database.UpdateBusinessSettingsParams{
		BusinessID:             businessID,
		Description:            database.Text(strings.TrimSpace(req.Description)),
		Address:                database.Text(strings.TrimSpace(req.Address)),
		Phone:                  database.Text(strings.TrimSpace(req.Phone)),
		Whatsapp:               database.Text(strings.TrimSpace(req.Whatsapp)),
		LogoUrl:                database.Text(req.LogoURL),
		BannerUrl:              database.Text(req.BannerURL),
		DeliveryFee:            database.ToNumeric(deliveryFee),
		MinOrderValue:          database.ToNumeric(minOrder),
		MercadopagoPublicKey:   database.Text(strings.TrimSpace(req.MercadopagoPublicKey)),
		MercadopagoAccessToken: database.Text(strings.TrimSpace(req.MercadopagoAccessToken)),
	})
	if err != nil {
		log.Printf("ERROR: update settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// SetOpen toggles whether the catalog accepts orders.
func (h *SettingsHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req setOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsOpen == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_open is required"})
		return
	}

	if _, err := h.load(r.Context(), businessID); err != nil {
		log.Printf("ERROR: ensure settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	settings, err := h.store.SetBusinessOpen(r.Context(), database.SetBusinessOpenParams{
		BusinessID: businessID,
		IsOpen:     *req.IsOpen,
	})
	if err != nil {
		log.Printf("ERROR: set business open: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// --- Helpers ---

func (h *SettingsHandler) load(ctx context.Context, businessID uuid.UUID) (database.BusinessSetting, error) {
	settings, err := h.store.GetBusinessSettings(ctx, businessID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.BusinessSetting{}, err
	}

	user, err := h.store.GetUserByID(ctx, businessID)
	if err != nil {
		return database.BusinessSetting{}, err
	}
	return h.store.CreateDefaultBusinessSettings(ctx, database.CreateDefaultBusinessSettingsParams{
		BusinessID:  businessID,
		Description: database.Text(defaultDescription(user.BusinessName)),
	})
}
