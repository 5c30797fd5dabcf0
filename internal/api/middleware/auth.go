package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/auth"
)

const identityKey contextKey = "identity"

// IdentityResolver turns a request's credential into an Identity.
// auth.Resolver satisfies it.
type IdentityResolver interface {
	ResolveRequest(r *http.Request) (*auth.Identity, error)
}

// Authenticate is middleware that resolves the request's credential and
// stores the Identity in the context. Missing and invalid credentials get
// the same 401 body; resolver failures of any other kind are a 500.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity, err := resolver.ResolveRequest(r)
			if err != nil {
				if auth.IsCredentialError(err) {
					response.Unauthorized(w, requestID)
					return
				}
				slog.Error("failed to resolve identity", "error", err, "requestId", requestID)
				response.Internal(w, requestID)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
