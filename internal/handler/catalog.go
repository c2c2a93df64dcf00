package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pedinu/api/internal/cart"
	"github.com/pedinu/api/internal/checkout"
	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/enum"
	"github.com/pedinu/api/internal/payment"
	"github.com/pedinu/api/internal/views"
	"github.com/pedinu/api/internal/zone"
)

// CatalogStore defines the database methods needed by the public catalog.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	GetCatalogBySlug(ctx context.Context, businessSlug string) (database.GetCatalogBySlugRow, error)
	GetUserBySlug(ctx context.Context, businessSlug string) (database.User, error)
	GetProduct(ctx context.Context, arg database.GetProductParams) (database.Product, error)
	ListDeliveryZones(ctx context.Context, businessID uuid.UUID) ([]database.DeliveryZone, error)
}

// CheckoutService is satisfied by *checkout.Orchestrator.
type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

// CatalogHandler serves the unauthenticated storefront: menu, zones, cart
// and checkout.
type CatalogHandler struct {
	store    CatalogStore
	carts    cart.Store
	views    views.Counter
	checkout CheckoutService
}

func NewCatalogHandler(store CatalogStore, carts cart.Store, counter views.Counter, co CheckoutService) *CatalogHandler {
	return &CatalogHandler{store: store, carts: carts, views: counter, checkout: co}
}

// RegisterRoutes is mounted at /public/{slug}.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Catalog)
	r.Get("/zones", h.SearchZones)
	r.Post("/carts", h.CreateCart)
	r.Get("/carts/{cartID}", h.GetCart)
	r.Post("/carts/{cartID}/items", h.AddItem)
	r.Delete("/carts/{cartID}/items/{productID}", h.RemoveItem)
	r.Post("/checkout", h.Checkout)
}

// --- Request / Response types ---

type catalogProduct struct {
	ID               uuid.UUID        `json:"id"`
	CategoryID       *uuid.UUID       `json:"category_id"`
	Name             string           `json:"name"`
	Description      *string          `json:"description"`
	Price            decimal.Decimal  `json:"price"`
	PromotionalPrice *decimal.Decimal `json:"promotional_price"`
	ImageURL         *string          `json:"image_url"`
	IsAvailable      bool             `json:"is_available"`
	OrderIndex       int32            `json:"order_index"`
}

type catalogCategory struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	OrderIndex int32            `json:"order_index"`
	Products   []catalogProduct `json:"products"`
}

type catalogBusiness struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	Phone       *string   `json:"phone"`
	Whatsapp    *string   `json:"whatsapp"`
	LogoURL     *string   `json:"logo_url"`
	BannerURL   *string   `json:"banner_url"`
}

type catalogResponse struct {
	Business       catalogBusiness   `json:"business"`
	IsOpen         bool              `json:"is_open"`
	DeliveryFee    string            `json:"delivery_fee"`
	MinOrderValue  string            `json:"min_order_value"`
	PaymentMethods []string          `json:"payment_methods"`
	Zones          []zoneResponse    `json:"zones"`
	Categories     []catalogCategory `json:"categories"`
}

type cartLineResponse struct {
	Product  cart.Product `json:"product"`
	Quantity int          `json:"quantity"`
	Subtotal string       `json:"subtotal"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Lines     []cartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Total     string             `json:"total"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	lines := make([]cartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineResponse{Product: l.Product, Quantity: l.Quantity, Subtotal: l.Subtotal().StringFixed(2)}
	}
	return cartResponse{ID: c.ID, Lines: lines, ItemCount: c.ItemCount(), Total: c.Total().StringFixed(2)}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

type checkoutRequest struct {
	CartID        uuid.UUID `json:"cart_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Neighborhood  string    `json:"neighborhood"`
	Address       string    `json:"address"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes"`
}

type validationResponse struct {
	Error       string            `json:"error"`
	Fields      map[string]string `json:"fields"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// --- Handlers ---

// Catalog returns the storefront for a slug and counts one menu view.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	row, err := h.store.GetCatalogBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "catalog not found"})
			return
		}
		log.Printf("ERROR: get catalog: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	zones, err := h.store.ListDeliveryZones(r.Context(), row.BusinessID)
	if err != nil {
		log.Printf("ERROR: list catalog zones: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categories, err := buildCatalogCategories(row.Categories, row.Products)
	if err != nil {
		log.Printf("ERROR: decode catalog: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.views.Add(r.Context(), row.BusinessID, 1); err != nil {
		log.Printf("WARN: count menu view: %v", err)
	}

	zoneResp := make([]zoneResponse, len(zones))
	for i, z := range zones {
		zoneResp[i] = toZoneResponse(z)
	}

	writeJSON(w, http.StatusOK, catalogResponse{
		Business: catalogBusiness{
			ID:          row.BusinessID,
			Name:        row.BusinessName,
			Slug:        row.BusinessSlug,
			Description: textPtr(row.Description),
			Address:     textPtr(row.Address),
			Phone:       textPtr(row.Phone),
			Whatsapp:    textPtr(row.Whatsapp),
			LogoURL:     textPtr(row.LogoUrl),
			BannerURL:   textPtr(row.BannerUrl),
		},
		IsOpen:         row.IsOpen,
		DeliveryFee:    money(row.DeliveryFee),
		MinOrderValue:  money(row.MinOrderValue),
		PaymentMethods: enum.PaymentMethodLabels(),
		Zones:          zoneResp,
		Categories:     categories,
	})
}

// SearchZones filters the delivery zones by a case- and accent-insensitive
// substring of the neighborhood name.
func (h *CatalogHandler) SearchZones(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	rows, err := h.store.ListDeliveryZones(r.Context(), business.ID)
	if err != nil {
		log.Printf("ERROR: list zones: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	matches := zone.Search(zone.FromRows(rows), r.URL.Query().Get("q"))
	resp := make([]zoneResponse, len(matches))
	for i, z := range matches {
		resp[i] = zoneResponse{ID: z.ID, NeighborhoodName: z.NeighborhoodName, Fee: z.Fee.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	c := cart.New(business.ID)
	if err := h.carts.Save(r.Context(), c); err != nil {
		log.Printf("ERROR: save cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusCreated, toCartResponse(c))
}

func (h *CatalogHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}
	c, ok := h.loadCart(w, r, business.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// AddItem adds one unit of an available product of this business.
func (h *CatalogHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProductID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	c, ok := h.loadCart(w, r, business.ID)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), database.GetProductParams{ID: req.ProductID, BusinessID: business.ID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !product.IsAvailable {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "product is unavailable"})
		return
	}

	item := cartProduct(product)
	h.updateCart(w, r, c.ID, business.ID, func(c *cart.Cart) { c.Add(item) })
}

// RemoveItem takes one unit off a line; unknown products are a no-op.
func (h *CatalogHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "productID", "product")
	if !ok {
		return
	}

	c, ok := h.loadCart(w, r, business.ID)
	if !ok {
		return
	}

	h.updateCart(w, r, c.ID, business.ID, func(c *cart.Cart) { c.Remove(productID) })
}

// Checkout submits the cart. Online methods answer with a payment link,
// cash answers with the stored order and its WhatsApp link.
func (h *CatalogHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CartID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart_id is required"})
		return
	}

	res, err := h.checkout.Checkout(r.Context(), checkout.Request{
		BusinessID:   business.ID,
		BusinessName: business.BusinessName,
		CartID:       req.CartID,
		Customer: checkout.Customer{
			Name:          strings.TrimSpace(req.Name),
			Phone:         strings.TrimSpace(req.Phone),
			Neighborhood:  strings.TrimSpace(req.Neighborhood),
			Address:       strings.TrimSpace(req.Address),
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		},
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// --- Helpers ---

// business resolves {slug} to an active owner or writes 404.
func (h *CatalogHandler) business(w http.ResponseWriter, r *http.Request) (database.User, bool) {
	user, err := h.store.GetUserBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "catalog not found"})
			return database.User{}, false
		}
		log.Printf("ERROR: get business by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.User{}, false
	}
	if user.Status != enum.UserStatusActive {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "catalog not found"})
		return database.User{}, false
	}
	return user, true
}

func (h *CatalogHandler) loadCart(w http.ResponseWriter, r *http.Request, businessID uuid.UUID) (*cart.Cart, bool) {
	cartID, ok := urlID(w, r, "cartID", "cart")
	if !ok {
		return nil, false
	}

	c, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
			return nil, false
		}
		log.Printf("ERROR: get cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}
	if c.BusinessID != businessID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
		return nil, false
	}
	return c, true
}

// updateCart applies change atomically so concurrent edits of one cart
// cannot overwrite each other, then writes the resulting cart.
func (h *CatalogHandler) updateCart(w http.ResponseWriter, r *http.Request, cartID, businessID uuid.UUID, change func(*cart.Cart)) {
	c, err := h.carts.Update(r.Context(), cartID, func(c *cart.Cart) error {
		if c.BusinessID != businessID {
			return cart.ErrNotFound
		}
		change(c)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
		case errors.Is(err, cart.ErrConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: update cart: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

func cartProduct(p database.Product) cart.Product {
	cp := cart.Product{ID: p.ID, Name: p.Name, Price: database.FromNumeric(p.Price)}
	if p.PromotionalPrice.Valid {
		promo := database.FromNumeric(p.PromotionalPrice)
		cp.PromotionalPrice = &promo
	}
	return cp
}

// buildCatalogCategories keeps available products only and drops
// categories left empty. Products without a category are not listed.
func buildCatalogCategories(categoriesJSON, productsJSON []byte) ([]catalogCategory, error) {
	var categories []catalogCategory
	if err := json.Unmarshal(categoriesJSON, &categories); err != nil {
		return nil, err
	}
	var products []catalogProduct
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]catalogProduct)
	for _, p := range products {
		if !p.IsAvailable || p.CategoryID == nil {
			continue
		}
		byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
	}

	out := make([]catalogCategory, 0, len(categories))
	for _, c := range categories {
		ps := byCategory[c.ID]
		if len(ps) == 0 {
			continue
		}
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].OrderIndex < ps[j].OrderIndex })
		c.Products = ps
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Error:       "validation failed",
			Fields:      verr.Fields,
			Suggestions: verr.Suggestions,
		})
		return
	}

	var perr *checkout.PersistError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": perr.Message})
		return
	}

	var apiErr *payment.APIError
	if errors.As(err, &apiErr) {
		log.Printf("ERROR: payment gateway: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway unavailable"})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrCartNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, checkout.ErrBusinessClosed),
		errors.Is(err, checkout.ErrBelowMinimum),
		errors.Is(err, checkout.ErrWhatsAppNotConfigured),
		errors.Is(err, payment.ErrMissingAccessToken):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: checkout: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
