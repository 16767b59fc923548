package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/config"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored object does not exist
var ErrNotFound = errors.New("file not found")

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredFile describes an object written by a Storage backend
type StoredFile struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StorageType string    `json:"storageType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Storage defines the interface for token image storage
type Storage interface {
	// Store saves an upload under purpose/entityID and returns its metadata
	Store(ctx context.Context, upload Upload, purpose, entityID string) (*StoredFile, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error
}

// NewStorage creates a storage implementation based on the configuration
func NewStorage(cfg config.MediaConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(cfg.S3)
	default:
		return NewLocalStorage(cfg.Local)
	}
}

// objectKey builds the purpose/entityID/<uuid><ext> key of a new object
func objectKey(filename, purpose, entityID string) (string, string) {
	id := uuid.New().String()

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}

	return id, fmt.Sprintf("%s/%s/%s%s", purpose, entityID, id, ext)
}

// IsImage checks if a content type represents an image
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
