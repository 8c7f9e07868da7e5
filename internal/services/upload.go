package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/inkwell-press/apiserver/internal/storage"
)

// uploadPathPrefix is the public path prefix under which stored objects
// are served. Entities persist "/uploads/<key>" references only.
const uploadPathPrefix = "/uploads/"

// MaxUploadBytes caps avatar and thumbnail uploads.
const MaxUploadBytes = 5 << 20

// UploadService stores avatar and thumbnail images in object storage
// under generated keys.
type UploadService struct {
	store *storage.Storage
}

func NewUploadService(store *storage.Storage) *UploadService {
	return &UploadService{store: store}
}

// SaveImage validates that data is an image, stores it under a fresh
// uuid key preserving the original extension, and returns the public
// path reference.
func (s *UploadService) SaveImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrValidation
	}
	if int64(len(data)) > MaxUploadBytes {
		return "", fmt.Errorf("%w: file too large", ErrValidation)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: not an image", ErrValidation)
	}

	ext := strings.ToLower(path.Ext(filename))
	key := uuid.NewString() + ext

	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return uploadPathPrefix + key, nil
}

// Open returns a reader for a stored object by its key.
func (s *UploadService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.Get(ctx, key)
}
