package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists objects on the local filesystem under the same key
// layout as the hosted store. It is intended for development and test
// environments where an object storage service is not available; the router
// serves its base path so the returned URLs resolve.
type FileStore struct {
	basePath      string
	publicBaseURL string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath, publicBaseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// Upload writes the buffer under a fresh public id inside the folder.
func (s *FileStore) Upload(ctx context.Context, data []byte, contentType, folder string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("storage: empty upload buffer")
	}

	publicID := strings.Trim(folder, "/") + "/" + uuid.NewString()
	key, err := sanitizeKey(ObjectKey(publicID, ExtensionForMime(contentType)))
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("storage: write file: %w", err)
	}

	return &UploadResult{
		URL:      s.publicBaseURL + "/" + key,
		PublicID: publicID,
	}, nil
}

// Destroy removes every stored object whose key matches the public id.
func (s *FileStore) Destroy(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matches, err := s.matchesForPublicID(publicID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return ErrObjectNotFound
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: remove file: %w", err)
		}
	}
	return nil
}

// Fetch reads back the object addressed by the public id. The content type is
// sniffed from the file contents.
func (s *FileStore) Fetch(ctx context.Context, publicID string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	matches, err := s.matchesForPublicID(publicID)
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", ErrObjectNotFound
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, "", fmt.Errorf("storage: read file: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (s *FileStore) matchesForPublicID(publicID string) ([]string, error) {
	key, err := sanitizeKey(keyPrefix + strings.Trim(publicID, "/"))
	if err != nil {
		return nil, err
	}
	pattern := filepath.Join(s.basePath, filepath.FromSlash(key)) + ".*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("storage: match objects: %w", err)
	}
	return matches, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ ObjectStore = (*FileStore)(nil)
