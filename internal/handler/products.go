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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/service"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProductsByBusiness(ctx context.Context, businessID uuid.UUID) ([]database.Product, error)
	ListProductsByCategory(ctx context.Context, arg database.ListProductsByCategoryParams) ([]database.Product, error)
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	SetProductAvailability(ctx context.Context, arg database.SetProductAvailabilityParams) (database.Product, error)
	SetProductOrder(ctx context.Context, arg database.SetProductOrderParams) (int64, error)
	DeleteProduct(ctx context.Context, arg database.DeleteProductParams) (uuid.UUID, error)
}

// NewProductStore creates a ProductStore from a DBTX (pool or tx).
type NewProductStore func(db database.DBTX) ProductStore

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	store    ProductStore
	pool     service.TxBeginner
	newStore NewProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, pool service.TxBeginner, newStore NewProductStore) *ProductHandler {
	return &ProductHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers product endpoints. Mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/order", h.Reorder)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/availability", h.SetAvailability)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	CategoryID       string  `json:"category_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            string  `json:"price"`
	PromotionalPrice *string `json:"promotional_price"`
	ImageURL         string  `json:"image_url"`
	IsAvailable      *bool   `json:"is_available"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type reorderProductsRequest struct {
	CategoryID uuid.UUID   `json:"category_id"`
	IDs        []uuid.UUID `json:"ids"`
}

type productResponse struct {
	ID               uuid.UUID  `json:"id"`
	BusinessID       uuid.UUID  `json:"business_id"`
	CategoryID       *uuid.UUID `json:"category_id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	Price            string     `json:"price"`
	PromotionalPrice *string    `json:"promotional_price"`
	ImageURL         *string    `json:"image_url"`
	IsAvailable      bool       `json:"is_available"`
	OrderIndex       int32      `json:"order_index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:               p.ID,
		BusinessID:       p.BusinessID,
		Name:             p.Name,
		Description:      textPtr(p.Description),
		Price:            money(p.Price),
		PromotionalPrice: moneyPtr(p.PromotionalPrice),
		ImageURL:         textPtr(p.ImageUrl),
		IsAvailable:      p.IsAvailable,
		OrderIndex:       p.OrderIndex,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.CategoryID.Valid {
		id := uuid.UUID(p.CategoryID.Bytes)
		resp.CategoryID = &id
	}
	return resp
}

func toProductResponses(products []database.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

// validProduct is a productRequest after parsing.
type validProduct struct {
	categoryID  uuid.UUID
	name        string
	price       decimal.Decimal
	promo       *decimal.Decimal
	isAvailable bool
}

var (
	errPromoNotBelowPrice = errors.New("promotional_price must be lower than price")
	errUnknownProduct     = errors.New("unknown product")
)

// --- Handlers ---

// List returns the business products, optionally for one category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var (
		products []database.Product
		err      error
	)
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		catID, perr := uuid.Parse(raw)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		products, err = h.store.ListProductsByCategory(r.Context(), database.ListProductsByCategoryParams{
			BusinessID: businessID,
			CategoryID: database.UUID(catID),
		})
	} else {
		products, err = h.store.ListProductsByBusiness(r.Context(), businessID)
	}
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// Get returns one product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), database.GetProductParams{ID: productID, BusinessID: businessID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create adds a product at the end of its category.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := validateProduct(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		BusinessID:       businessID,
		CategoryID:       database.UUID(v.categoryID),
		Name:             v.name,
		Description:      database.Text(strings.TrimSpace(req.Description)),
		Price:            database.ToNumeric(v.price),
		PromotionalPrice: database.NullableNumeric(v.promo),
		ImageUrl:         database.Text(req.ImageURL),
		IsAvailable:      v.isAvailable,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update replaces a product's editable fields.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v, err := validateProduct(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:               productID,
		BusinessID:       businessID,
		CategoryID:       database.UUID(v.categoryID),
		Name:             v.name,
		Description:      database.Text(strings.TrimSpace(req.Description)),
		Price:            database.ToNumeric(v.price),
		PromotionalPrice: database.NullableNumeric(v.promo),
		ImageUrl:         database.Text(req.ImageURL),
		IsAvailable:      v.isAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// SetAvailability toggles whether the product shows in the public catalog.
func (h *ProductHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}

	product, err := h.store.SetProductAvailability(r.Context(), database.SetProductAvailabilityParams{
		ID:          productID,
		BusinessID:  businessID,
		IsAvailable: *req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: set product availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete removes a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	_, err := h.store.DeleteProduct(r.Context(), database.DeleteProductParams{ID: productID, BusinessID: businessID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reorder sets order_index within one category to each id's position.
func (h *ProductHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	var req reorderProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CategoryID == uuid.Nil || len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id and ids are required"})
		return
	}

	err := h.withTx(r.Context(), func(store ProductStore) error {
		for i, id := range req.IDs {
			n, err := store.SetProductOrder(r.Context(), database.SetProductOrderParams{
				ID:         id,
				BusinessID: businessID,
				CategoryID: database.UUID(req.CategoryID),
				OrderIndex: int32(i),
			})
			if err != nil {
				return fmt.Errorf("set product order: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w in category: %s", errUnknownProduct, id)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errUnknownProduct) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: reorder products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	products, err := h.store.ListProductsByCategory(r.Context(), database.ListProductsByCategoryParams{
		BusinessID: businessID,
		CategoryID: database.UUID(req.CategoryID),
	})
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// --- Helpers ---

func (h *ProductHandler) withTx(ctx context.Context, fn func(ProductStore) error) error {
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

func validateProduct(req productRequest) (validProduct, error) {
	var v validProduct

	catID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return v, errors.New("category_id is required")
	}
	v.categoryID = catID

	v.name = strings.TrimSpace(req.Name)
	if v.name == "" {
		return v, errors.New("name is required")
	}

	if req.Price == "" {
		return v, errors.New("price is required")
	}
	v.price, err = parseMoney(req.Price)
	if err != nil {
		return v, errors.New("price must be a non-negative amount")
	}

	if req.PromotionalPrice != nil && strings.TrimSpace(*req.PromotionalPrice) != "" {
		promo, err := parseMoney(*req.PromotionalPrice)
		if err != nil {
			return v, errors.New("promotional_price must be a non-negative amount")
		}
		if !promo.LessThan(v.price) {
			return v, errPromoNotBelowPrice
		}
		v.promo = &promo
	}

	v.isAvailable = true
	if req.IsAvailable != nil {
		v.isAvailable = *req.IsAvailable
	}
	return v, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
