package page

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPageNotFound is returned when a page record is not found.
var ErrPageNotFound = errors.New("page not found")

// ErrSlugTaken is returned when another page already uses the public slug.
var ErrSlugTaken = errors.New("public slug already in use")

// Repository provides operations on the pages table.
type Repository interface {
	Create(ctx context.Context, p *Page) error
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByPublicSlug(ctx context.Context, slug string) (*Page, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Page, error)
	Update(ctx context.Context, p *Page) error
	SetPublicSlug(ctx context.Context, id uuid.UUID, slug *string) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
