package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/user"
)

// KeyVerifier resolves plaintext API keys. apikey.Service satisfies it.
type KeyVerifier interface {
	Verify(ctx context.Context, token string) (*apikey.APIKey, error)
}

// UserFinder looks users up by id. user.Repository satisfies it.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Resolver turns a request's credential into an Identity.
type Resolver struct {
	sessions *SessionManager
	keys     KeyVerifier
	users    UserFinder
}

// NewResolver creates a new Resolver.
func NewResolver(sessions *SessionManager, keys KeyVerifier, users UserFinder) *Resolver {
	return &Resolver{
		sessions: sessions,
		keys:     keys,
		users:    users,
	}
}

// ResolveRequest parses the request's carrier and resolves it.
func (r *Resolver) ResolveRequest(req *http.Request) (*Identity, error) {
	return r.Resolve(req.Context(), ParseCarrier(req))
}

// Resolve verifies the selected carrier. Once a carrier is chosen its failure
// is final; no other credential on the request is tried.
func (r *Resolver) Resolve(ctx context.Context, c Carrier) (*Identity, error) {
	switch c.Kind {
	case CarrierAPIKeyHeader, CarrierAPIKeyAuth:
		return r.resolveAPIKey(ctx, c.Token)
	case CarrierBearerAuth, CarrierSessionCookie:
		return r.resolveSession(ctx, c.Token)
	default:
		return nil, ErrMissingCredential
	}
}

func (r *Resolver) resolveAPIKey(ctx context.Context, token string) (*Identity, error) {
	key, err := r.keys.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("verifying api key: %w", err)
	}

	u, err := r.lookupUser(ctx, key.UserID)
	if err != nil {
		return nil, err
	}

	scopes := key.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return &Identity{
		UserID:   u.ID,
		TwitchID: u.TwitchID,
		Username: u.Username,
		Scopes:   scopes,
	}, nil
}

func (r *Resolver) resolveSession(ctx context.Context, token string) (*Identity, error) {
	identity, err := r.sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	if _, err := r.lookupUser(ctx, identity.UserID); err != nil {
		return nil, err
	}
	return identity, nil
}

// lookupUser maps both a missing user and a failed lookup to
// ErrInvalidCredential.
func (r *Resolver) lookupUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := r.users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			slog.Warn("user lookup failed during authentication", "userId", id, "error", err)
		}
		return nil, ErrInvalidCredential
	}
	return u, nil
}
