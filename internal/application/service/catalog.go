package service

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/storage"
)

// ImageStore persists uploaded catalog images and returns their public URL
type ImageStore interface {
	SaveImage(entity string, fh *multipart.FileHeader) (string, error)
	Delete(url string) error
}

// saveImage stores fh when present and maps storage errors to client errors
func saveImage(images ImageStore, entity string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	url, err := images.SaveImage(entity, fh)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return "", apperror.NewFieldError("image", "Image is too large")
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", apperror.NewFieldError("image", "Only jpg, jpeg, png, gif and webp images are allowed")
	case err != nil:
		return "", apperror.NewInternalError("failed to store image", err)
	}
	return url, nil
}

// ParseCounterNo parses a counter number sent as a form string
func ParseCounterNo(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.NewFieldError("counterNo", "Counter number is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.NewFieldError("counterNo", "Counter number must be a non-negative integer")
	}
	return n, nil
}
