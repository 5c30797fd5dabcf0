package permission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPermissionNotFound is returned when a permission record is not found.
var ErrPermissionNotFound = errors.New("permission not found")

// ErrPermissionExists is returned when the (page, user) pair already has a
// permission row.
var ErrPermissionExists = errors.New("permission already exists")

// ErrUnknownReference is returned when the page or user of a new permission
// does not exist.
var ErrUnknownReference = errors.New("page or user does not exist")

// Repository provides operations on the page_permissions table. Methods
// taking a pageID only match rows on that page.
type Repository interface {
	Find(ctx context.Context, pageID, userID uuid.UUID) (*Permission, error)
	Create(ctx context.Context, p *Permission) error
	UpdateCanEdit(ctx context.Context, pageID, id uuid.UUID, canEdit bool) (*Permission, error)
	Delete(ctx context.Context, pageID, id uuid.UUID) error
	GetWithUser(ctx context.Context, pageID, id uuid.UUID) (*WithUser, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]WithUser, error)
	ListSharedWithUser(ctx context.Context, userID uuid.UUID) ([]SharedPage, error)
}
