package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/config"
)

// LocalStorage implements the Storage interface for local filesystem
type LocalStorage struct {
	basePath    string
	baseURL     string
	permissions os.FileMode
}

// NewLocalStorage creates a new LocalStorage
func NewLocalStorage(cfg config.LocalMediaConfig) (*LocalStorage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	perms := cfg.Permissions
	if perms == "" {
		perms = "0644"
	}
	mode, err := strconv.ParseUint(perms, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid permissions format: %w", err)
	}

	return &LocalStorage{
		basePath:    cfg.BasePath,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		permissions: os.FileMode(mode),
	}, nil
}

// Store saves a file to the local filesystem
func (s *LocalStorage) Store(ctx context.Context, upload Upload, purpose, entityID string) (*StoredFile, error) {
	id, key := objectKey(upload.Filename, purpose, entityID)
	filePath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, upload.Body)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	return &StoredFile{
		ID:          id,
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", s.baseURL, key),
		ContentType: upload.ContentType,
		Size:        size,
		StorageType: "local",
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Delete removes a file from the local filesystem
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	clean := filepath.Clean("/" + key)
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
