package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateTwitchID is returned when a user with the same provider id already exists.
var ErrDuplicateTwitchID = errors.New("twitch id already exists")

// SearchLimit caps the number of users returned by Search.
const SearchLimit = 10

// Repository provides operations on the users table.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByTwitchID(ctx context.Context, twitchID string) (*User, error)
	Create(ctx context.Context, info ProviderInfo) (*User, error)
	UpdateProviderInfo(ctx context.Context, info ProviderInfo) (*User, error)
	Search(ctx context.Context, query string, excludeID uuid.UUID) ([]User, error)
}
