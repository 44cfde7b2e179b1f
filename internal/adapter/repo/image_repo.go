package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// ImageRepositoryPG implements domain.ImageRepository using PostgreSQL.
type ImageRepositoryPG struct {
	db infra.SQLExecutor
}

// NewImageRepository constructs a new image repository instance.
func NewImageRepository(db infra.SQLExecutor) *ImageRepositoryPG {
	return &ImageRepositoryPG{db: db}
}

// Create inserts a new image record and returns it with the store-assigned
// id and creation timestamp filled in.
func (r *ImageRepositoryPG) Create(ctx context.Context, image *domain.Image) (*domain.Image, error) {
	row := r.db.QueryRow(ctx, sqlinline.QInsertImage, string(image.Type), image.Prompt, image.MediaURL, image.PublicID)
	created := *image
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return &created, nil
}

// GetByID returns the record with the given id, or domain.ErrNotFound.
func (r *ImageRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	row := r.db.QueryRow(ctx, sqlinline.QSelectImageByID, id)
	var image domain.Image
	if err := row.Scan(&image.ID, &image.Type, &image.Prompt, &image.MediaURL, &image.PublicID, &image.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select image: %w", err)
	}
	return &image, nil
}

// List returns the requested page ordered by creation time descending, plus
// the total number of matching records.
func (r *ImageRepositoryPG) List(ctx context.Context, filter domain.ListFilter) ([]domain.Image, int, error) {
	offset := (filter.Page - 1) * filter.Limit

	rows, err := r.db.Query(ctx, sqlinline.QListImages, string(filter.Type), filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var image domain.Image
		if err := rows.Scan(&image.ID, &image.Type, &image.Prompt, &image.MediaURL, &image.PublicID, &image.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, sqlinline.QCountImages, string(filter.Type)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}

	return images, total, nil
}

// Delete removes the record with the given id, or returns domain.ErrNotFound
// when no row matched.
func (r *ImageRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteImage, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
