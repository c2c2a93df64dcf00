package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/service"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategoriesByBusiness(ctx context.Context, businessID uuid.UUID) ([]database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	ClearProductsCategory(ctx context.Context, arg database.ClearProductsCategoryParams) error
	DeleteCategory(ctx context.Context, arg database.DeleteCategoryParams) (uuid.UUID, error)
	SetCategoryOrder(ctx context.Context, arg database.SetCategoryOrderParams) (int64, error)
}

// NewCategoryStore creates a CategoryStore from a DBTX (pool or tx).
type NewCategoryStore func(db database.DBTX) CategoryStore

// CategoryHandler handles category CRUD endpoints.
type CategoryHandler struct {
	store    CategoryStore
	pool     service.TxBeginner
	newStore NewCategoryStore
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore, pool service.TxBeginner, newStore NewCategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers category endpoints. Mounted at /categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/order", h.Reorder)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type categoryResponse struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
	OrderIndex int32     `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:         c.ID,
		BusinessID: c.BusinessID,
		Name:       c.Name,
		OrderIndex: c.OrderIndex,
		CreatedAt:  c.CreatedAt,
	}
}

var errUnknownCategory = errors.New("unknown category")

// --- Handlers ---

// List returns the business categories ordered by order_index.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategoriesByBusiness(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create appends a category after the existing ones.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		BusinessID: businessID,
		Name:       name,
	})
	if err != nil {
		log.Printf("ERROR: create category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update renames a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "id", "category")
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		ID:         catID,
		BusinessID: businessID,
		Name:       name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: update category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete detaches the category's products, then removes the category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	catID, ok := urlID(w, r, "id", "category")
	if !ok {
		return
	}

	err := h.withTx(r.Context(), func(store CategoryStore) error {
		if err := store.ClearProductsCategory(r.Context(), database.ClearProductsCategoryParams{
			CategoryID: database.UUID(catID),
			BusinessID: businessID,
		}); err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		if _, err := store.DeleteCategory(r.Context(), database.DeleteCategoryParams{
			ID:         catID,
			BusinessID: businessID,
		}); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder sets order_index to each id's position in the list.
func (h *CategoryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}

	err := h.withTx(r.Context(), func(store CategoryStore) error {
		for i, id := range req.IDs {
			n, err := store.SetCategoryOrder(r.Context(), database.SetCategoryOrderParams{
				ID:         id,
				BusinessID: businessID,
				OrderIndex: int32(i),
			})
			if err != nil {
				return fmt.Errorf("set category order: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", errUnknownCategory, id)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errUnknownCategory) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: reorder categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categories, err := h.store.ListCategoriesByBusiness(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *CategoryHandler) withTx(ctx context.Context, fn func(CategoryStore) error) error {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(h.newStore(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
