package apikey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// MaxCreateAttempts bounds token generation retries on hash collisions.
const MaxCreateAttempts = 3

// ErrKeyGenerationExhausted is returned when every attempt collided with an
// existing token hash.
var ErrKeyGenerationExhausted = errors.New("failed to generate a unique api key")

// TokenGenerator produces plaintext tokens.
type TokenGenerator func() (string, error)

// Service manages the API key lifecycle for their owners.
type Service struct {
	repo     Repository
	generate TokenGenerator
}

// Option configures a Service.
type Option func(*Service)

// WithTokenGenerator replaces the default crypto/rand token generator.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Service) {
		s.generate = gen
	}
}

// NewService creates a new API key Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		generate: GenerateToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new key for userID. The plaintext token is only returned
// here. A token hash collision is retried with a fresh token up to
// MaxCreateAttempts times; any other store error is returned immediately.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name *string, scopes []string) (*Created, error) {
	normalized, err := NormalizeScopes(scopes)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxCreateAttempts; attempt++ {
		token, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generating api key token: %w", err)
		}

		key := &APIKey{
			UserID:    userID,
			Name:      name,
			TokenHash: HashToken(token),
			Scopes:    normalized,
		}
		err = s.repo.Create(ctx, key)
		if err == nil {
			return &Created{ID: key.ID, Token: token}, nil
		}
		if !errors.Is(err, ErrDuplicateTokenHash) {
			return nil, fmt.Errorf("creating api key: %w", err)
		}
		slog.Warn("api key token hash collision", "userId", userID, "attempt", attempt)
	}

	return nil, ErrKeyGenerationExhausted
}

// Verify resolves a plaintext token to its active key. Unknown and revoked
// tokens both yield ErrKeyNotFound.
func (s *Service) Verify(ctx context.Context, token string) (*APIKey, error) {
	if token == "" {
		return nil, ErrKeyNotFound
	}
	key, err := s.repo.FindActiveByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}
	return key, nil
}

// List returns the keys owned by userID, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]APIKey, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Revoke soft-deletes a key. It reports false when no active key with this
// id belongs to userID.
func (s *Service) Revoke(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.repo.Revoke(ctx, id, userID)
}

// Delete removes a key. It reports false when no key with this id belongs
// to userID.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.repo.Delete(ctx, id, userID)
}
