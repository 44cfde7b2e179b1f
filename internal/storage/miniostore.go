package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"server/internal/infra"
)

// MinioStore persists objects in a MinIO (or any S3-compatible) bucket and
// serves them through a public base URL.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinioStore connects to the configured endpoint and ensures the bucket
// exists.
func NewMinioStore(cfg *infra.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket %q: %w", cfg.MinioBucket, err)
		}
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.MinioBucket,
		publicBaseURL: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}, nil
}

// Upload stores the buffer under a fresh public id inside the folder and
// returns the public URL.
func (s *MinioStore) Upload(ctx context.Context, data []byte, contentType, folder string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("storage: empty upload buffer")
	}

	publicID := strings.Trim(folder, "/") + "/" + uuid.NewString()
	key := ObjectKey(publicID, ExtensionForMime(contentType))

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: put object %q: %w", key, err)
	}

	return &UploadResult{
		URL:      s.publicBaseURL + "/" + key,
		PublicID: publicID,
	}, nil
}

// Destroy removes the object addressed by the public id. The stored key
// carries an extension the id does not, so matching objects are found by
// prefix listing first.
func (s *MinioStore) Destroy(ctx context.Context, publicID string) error {
	keys, err := s.keysForPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return ErrObjectNotFound
	}
	for _, key := range keys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("storage: remove object %q: %w", key, err)
		}
	}
	return nil
}

// Fetch reads back the object addressed by the public id.
func (s *MinioStore) Fetch(ctx context.Context, publicID string) ([]byte, string, error) {
	keys, err := s.keysForPublicID(ctx, publicID)
	if err != nil {
		return nil, "", err
	}
	if len(keys) == 0 {
		return nil, "", ErrObjectNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, keys[0], minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("storage: get object %q: %w", keys[0], err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("storage: stat object %q: %w", keys[0], err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("storage: read object %q: %w", keys[0], err)
	}
	return data, stat.ContentType, nil
}

func (s *MinioStore) keysForPublicID(ctx context.Context, publicID string) ([]string, error) {
	prefix := keyPrefix + strings.Trim(publicID, "/") + "."
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage: list objects %q: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

var _ ObjectStore = (*MinioStore)(nil)
