package domain

import "context"

// ImageRepository handles persistence for image records. Create assigns the
// record id and creation timestamp; List returns the matching page together
// with the total match count.
type ImageRepository interface {
	Create(ctx context.Context, image *Image) (*Image, error)
	GetByID(ctx context.Context, id string) (*Image, error)
	List(ctx context.Context, filter ListFilter) ([]Image, int, error)
	Delete(ctx context.Context, id string) error
}
