package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Destroy and Fetch when no stored object
// matches the given public id.
var ErrObjectNotFound = errors.New("storage: object not found")

// UploadResult describes a stored object: the public serving URL and the
// durable identifier embedded in it.
type UploadResult struct {
	URL      string
	PublicID string
}

// ObjectStore uploads image buffers into a namespaced folder and deletes or
// reads them back by public id. Uploads are not idempotent: the same bytes
// uploaded twice yield two distinct objects.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
	Fetch(ctx context.Context, publicID string) ([]byte, string, error)
}
