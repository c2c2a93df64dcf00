package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pedinu/api/internal/database"
	"github.com/pedinu/api/internal/printout"
)

// CatalogLinkStore is satisfied by *database.Queries.
type CatalogLinkStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// CatalogLinkHandler hands owners the public menu address, as text, QR
// image or printable poster.
type CatalogLinkHandler struct {
	store  CatalogLinkStore
	appURL string
}

// NewCatalogLinkHandler creates a new CatalogLinkHandler.
func NewCatalogLinkHandler(store CatalogLinkStore, appURL string) *CatalogLinkHandler {
	return &CatalogLinkHandler{store: store, appURL: strings.TrimRight(appURL, "/")}
}

// RegisterRoutes registers catalog link endpoints. Mounted at /catalog-link.
func (h *CatalogLinkHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Link)
	r.Get("/qr.png", h.QR)
	r.Get("/poster.pdf", h.Poster)
}

type catalogLinkResponse struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// Link handles GET /catalog-link.
func (h *CatalogLinkHandler) Link(w http.ResponseWriter, r *http.Request) {
	user, ok := h.owner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, catalogLinkResponse{URL: h.catalogURL(user.BusinessSlug), Slug: user.BusinessSlug})
}

// QR handles GET /catalog-link/qr.png?size=.
func (h *CatalogLinkHandler) QR(w http.ResponseWriter, r *http.Request) {
	user, ok := h.owner(w, r)
	if !ok {
		return
	}

	size := printout.DefaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 64 && v <= 1024 {
			size = v
		}
	}

	png, err := printout.CatalogQR(h.catalogURL(user.BusinessSlug), size)
	if err != nil {
		log.Printf("ERROR: render catalog qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png) //nolint:errcheck
}

// Poster handles GET /catalog-link/poster.pdf.
func (h *CatalogLinkHandler) Poster(w http.ResponseWriter, r *http.Request) {
	user, ok := h.owner(w, r)
	if !ok {
		return
	}

	pdf, err := printout.CatalogPoster(user.BusinessName, h.catalogURL(user.BusinessSlug))
	if err != nil {
		log.Printf("ERROR: render catalog poster: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=cardapio-"+user.BusinessSlug+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf) //nolint:errcheck
}

func (h *CatalogLinkHandler) catalogURL(slug string) string {
	return h.appURL + "/catalogo/" + slug
}

func (h *CatalogLinkHandler) owner(w http.ResponseWriter, r *http.Request) (database.User, bool) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return database.User{}, false
	}
	user, err := h.store.GetUserByID(r.Context(), businessID)
	if err != nil {
		log.Printf("ERROR: get business for catalog link: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.User{}, false
	}
	return user, true
}
