package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
)

// ZoneStore defines the database methods needed by delivery zone handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ZoneStore interface {
	ListDeliveryZones(ctx context.Context, businessID uuid.UUID) ([]database.DeliveryZone, error)
	CreateDeliveryZone(ctx context.Context, arg database.CreateDeliveryZoneParams) (database.DeliveryZone, error)
	UpdateDeliveryZone(ctx context.Context, arg database.UpdateDeliveryZoneParams) (database.DeliveryZone, error)
	DeleteDeliveryZone(ctx context.Context, arg database.DeleteDeliveryZoneParams) (uuid.UUID, error)
}

// ZoneHandler manages the neighborhoods a business delivers to.
type ZoneHandler struct {
	store ZoneStore
}

func NewZoneHandler(store ZoneStore) *ZoneHandler {
	return &ZoneHandler{store: store}
}

// RegisterRoutes is mounted at /zones.
func (h *ZoneHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type zoneRequest struct {
	NeighborhoodName string `json:"neighborhood_name"`
	Fee              string `json:"fee"`
}

type zoneResponse struct {
	ID               uuid.UUID `json:"id"`
	NeighborhoodName string    `json:"neighborhood_name"`
	Fee              string    `json:"fee"`
}

func toZoneResponse(z database.DeliveryZone) zoneResponse {
	return zoneResponse{ID: z.ID, NeighborhoodName: z.NeighborhoodName, Fee: money(z.Fee)}
}

func (req zoneRequest) validate() (string, error) {
	name := strings.TrimSpace(req.NeighborhoodName)
	if name == "" {
		return "", errors.New("neighborhood_name is required")
	}
	if req.Fee == "" {
		return "", errors.New("fee is required")
	}
	return name, nil
}

// --- Handlers ---

// List returns zones ordered by neighborhood name.
func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	zones, err := h.store.ListDeliveryZones(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list zones: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]zoneResponse, len(zones))
	for i, z := range zones {
		resp[i] = toZoneResponse(z)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	name, err := req.validate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fee, err := parseMoney(req.Fee)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fee must be a non-negative amount"})
		return
	}

	z, err := h.store.CreateDeliveryZone(r.Context(), database.CreateDeliveryZoneParams{
		BusinessID:       businessID,
		NeighborhoodName: name,
		Fee:              database.ToNumeric(fee),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "neighborhood already has a delivery zone"})
			return
		}
		log.Printf("ERROR: create zone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toZoneResponse(z))
}

func (h *ZoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	zoneID, ok := urlID(w, r, "id", "zone")
	if !ok {
		return
	}

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	name, err := req.validate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fee, err := parseMoney(req.Fee)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fee must be a non-negative amount"})
		return
	}

	z, err := h.store.UpdateDeliveryZone(r.Context(), database.UpdateDeliveryZoneParams{
		ID:               zoneID,
		BusinessID:       businessID,
		NeighborhoodName: name,
		Fee:              database.ToNumeric(fee),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "zone not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "neighborhood already has a delivery zone"})
			return
		}
		log.Printf("ERROR: update zone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toZoneResponse(z))
}

func (h *ZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	zoneID, ok := urlID(w, r, "id", "zone")
	if !ok {
		return
	}

	if _, err := h.store.DeleteDeliveryZone(r.Context(), database.DeleteDeliveryZoneParams{ID: zoneID, BusinessID: businessID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "zone not found"})
			return
		}
		log.Printf("ERROR: delete zone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
