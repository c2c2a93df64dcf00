package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pedinu/api/internal/storage"
)

// ImageUploader stores a business image. Satisfied by *storage.Uploader.
type ImageUploader interface {
	Upload(businessID uuid.UUID, purpose, contentType string, r io.Reader) (string, error)
}

// UploadHandler accepts product, logo and banner images.
type UploadHandler struct {
	uploader ImageUploader
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploader ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterRoutes registers upload endpoints. Mounted at /uploads.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{purpose}", h.Upload)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /uploads/{purpose} with a multipart "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusiness(w, r)
	if !ok {
		return
	}

	purpose := chi.URLParam(r, "purpose")
	if !storage.ValidPurpose(purpose) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": storage.ErrInvalidPurpose.Error()})
		return
	}

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": storage.ErrTooLarge.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(businessID, purpose, header.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrInvalidPurpose):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: upload image: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
