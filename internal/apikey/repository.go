package apikey

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrKeyNotFound is returned when no matching key exists for the caller.
var ErrKeyNotFound = errors.New("api key not found")

// ErrDuplicateTokenHash is returned when the token hash collides with an
// existing key.
var ErrDuplicateTokenHash = errors.New("api key token hash already exists")

// Repository provides operations on the api_keys table. Every method that
// takes a userID only matches rows owned by that user.
type Repository interface {
	Create(ctx context.Context, key *APIKey) error
	FindActiveByTokenHash(ctx context.Context, tokenHash string) (*APIKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]APIKey, error)
	Revoke(ctx context.Context, id, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}
