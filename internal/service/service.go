// Package service implements the image operation pipeline: provider call,
// object upload, metadata persistence, and reversible deletion across both
// stores.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/image"
	"server/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	exportBatchSize = 100
)

// ImageService coordinates the generative provider, the object store, and
// the metadata repository. It holds no mutable state and is safe for
// concurrent use.
type ImageService struct {
	generator image.Generator
	store     storage.ObjectStore
	repo      domain.ImageRepository
	folder    string
	logger    zerolog.Logger
}

func NewImageService(generator image.Generator, store storage.ObjectStore, repo domain.ImageRepository, folder string, logger zerolog.Logger) *ImageService {
	return &ImageService{
		generator: generator,
		store:     store,
		repo:      repo,
		folder:    folder,
		logger:    logger,
	}
}

// Generate produces a new image from the prompt and returns its public URL.
func (s *ImageService) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return s.persistResult(ctx, domain.OperationGenerated, prompt, payload)
}

// Modify reworks the provided source image according to the prompt and
// returns the public URL of the result.
func (s *ImageService) Modify(ctx context.Context, prompt string, source image.Payload) (string, error) {
	payload, err := s.generator.Modify(ctx, prompt, source)
	if err != nil {
		return "", err
	}
	return s.persistResult(ctx, domain.OperationModified, prompt, payload)
}

// persistResult uploads the produced image and then writes the metadata
// record. The two stores share no transaction: an upload failure aborts
// before anything is persisted, and a record insert failure triggers a
// best-effort compensating delete of the just-uploaded object. When that
// compensation fails too, the orphaned object is logged distinctly so a
// reconciliation sweep can find it later.
func (s *ImageService) persistResult(ctx context.Context, opType domain.OperationType, prompt string, payload *image.Payload) (string, error) {
	result, err := s.store.Upload(ctx, payload.Data, payload.MimeType, s.folder+"/"+string(opType))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	record := &domain.Image{
		Type:     opType,
		Prompt:   prompt,
		MediaURL: result.URL,
		PublicID: result.PublicID,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if destroyErr := s.store.Destroy(ctx, result.PublicID); destroyErr != nil {
			s.logger.Error().
				Str("event", "orphan_object").
				Str("public_id", result.PublicID).
				Str("url", result.URL).
				AnErr("destroy_error", destroyErr).
				Err(err).
				Msg("record insert failed and compensating delete failed; object is orphaned")
		} else {
			s.logger.Warn().
				Str("public_id", result.PublicID).
				Err(err).
				Msg("record insert failed; uploaded object was removed")
		}
		return "", fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}

	s.logger.Info().
		Str("image_id", created.ID).
		Str("operation", string(opType)).
		Str("url", result.URL).
		Msg("image operation completed")

	return result.URL, nil
}

// List returns a page of records ordered by creation time descending,
// together with the navigation block. An unknown type filter is ignored,
// page and limit are normalized into their valid ranges.
func (s *ImageService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Image, domain.Pagination, error) {
	if !filter.Type.Valid() {
		filter.Type = ""
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	pagination := domain.Pagination{
		CurrentPage:  filter.Page,
		TotalPages:   (total + filter.Limit - 1) / filter.Limit,
		TotalItems:   total,
		ItemsPerPage: filter.Limit,
	}
	return records, pagination, nil
}

// Get returns a single record by id.
func (s *ImageService) Get(ctx context.Context, id string) (*domain.Image, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the stored object first and the metadata record second. A
// crash between the two steps leaves a record pointing at a missing object,
// which the next delete attempt cleans up; the reverse order would leave an
// orphan object no record could ever reference again.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	publicID, err := s.resolvePublicID(record)
	if err != nil {
		return err
	}

	if err := s.store.Destroy(ctx, publicID); err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("%w: %v", domain.ErrDeleteFailed, err)
		}
		// Tombstone left by an earlier interrupted delete; removing the
		// record finishes the job.
		s.logger.Warn().
			Str("image_id", record.ID).
			Str("public_id", publicID).
			Msg("stored object already gone; removing record")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("image_id", id).Msg("image deleted")
	return nil
}

// ExportItem is one gallery entry prepared for archive download.
type ExportItem struct {
	Name     string
	MimeType string
	Data     []byte
}

// Export fetches the newest records of the given type (all types when empty)
// together with their stored bytes. Records whose object is missing or whose
// URL cannot be resolved are skipped rather than failing the whole export.
func (s *ImageService) Export(ctx context.Context, opType domain.OperationType) ([]ExportItem, error) {
	records, _, err := s.List(ctx, domain.ListFilter{Type: opType, Page: 1, Limit: exportBatchSize})
	if err != nil {
		return nil, err
	}

	var items []ExportItem
	for _, record := range records {
		publicID, err := s.resolvePublicID(&record)
		if err != nil {
			s.logger.Warn().Str("image_id", record.ID).Err(err).Msg("skipping unresolvable record in export")
			continue
		}
		data, mime, err := s.store.Fetch(ctx, publicID)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				s.logger.Warn().Str("image_id", record.ID).Msg("skipping record with missing object in export")
				continue
			}
			return nil, err
		}
		items = append(items, ExportItem{
			Name:     record.ID + "." + storage.ExtensionForMime(mime),
			MimeType: mime,
			Data:     data,
		})
	}
	return items, nil
}

// resolvePublicID prefers the identifier captured at upload time and falls
// back to parsing the URL for records written before the field existed.
func (s *ImageService) resolvePublicID(record *domain.Image) (string, error) {
	if record.PublicID != "" {
		return record.PublicID, nil
	}
	publicID, err := storage.ExtractPublicID(record.MediaURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	return publicID, nil
}
