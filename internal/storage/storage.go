// Package storage keeps business images on local disk, served under
// /uploads/.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pedinu/api/internal/enum"
)

const (
	MaxUploadSize  = 2 << 20
	maxWidth       = 1200
	maxBannerWidth = 1600
	publicPrefix   = "/uploads"
	imagesDir      = "business-images"
)

var (
	ErrInvalidPurpose = errors.New("purpose must be products, logo or banner")
	ErrTooLarge       = errors.New("image exceeds 2MB")
	ErrNotImage       = errors.New("file is not a supported image")
)

type Uploader struct {
	Dir string
	now func() time.Time
}

func NewUploader(dir string) *Uploader {
	return &Uploader{Dir: dir, now: time.Now}
}

// ValidPurpose reports whether purpose names an image slot.
func ValidPurpose(purpose string) bool {
	switch purpose {
	case enum.UploadPurposeProducts, enum.UploadPurposeLogo, enum.UploadPurposeBanner:
		return true
	}
	return false
}

// Upload decodes the image, shrinks it to the slot's maximum width and
// writes it under {Dir}/business-images/{businessID}/{purpose}/. It returns
// the public URL.
func (u *Uploader) Upload(businessID uuid.UUID, purpose, contentType string, r io.Reader) (string, error) {
	if !ValidPurpose(purpose) {
		return "", ErrInvalidPurpose
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", ErrNotImage
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	limit := maxWidth
	if purpose == enum.UploadPurposeBanner {
		limit = maxBannerWidth
	}
	if img.Bounds().Dx() > limit {
		img = imaging.Resize(img, limit, 0, imaging.Lanczos)
	}

	ext := "jpg"
	if strings.Contains(contentType, "png") || strings.Contains(contentType, "gif") {
		ext = "png"
	}

	name := strconv.FormatInt(u.now().UnixMilli(), 10) + "." + ext
	rel := filepath.Join(imagesDir, businessID.String(), purpose, name)
	full := filepath.Join(u.Dir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	if err := imaging.Save(img, full, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	return publicPrefix + "/" + filepath.ToSlash(rel), nil
}
