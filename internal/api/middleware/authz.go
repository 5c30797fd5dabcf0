package middleware

import (
	"net/http"

	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/apikey"
)

// RequireSession returns middleware that rejects API-key identities with 403.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Unauthorized(w, requestID)
				return
			}

			if !identity.IsSession() {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "This endpoint requires a session login", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireScopes returns middleware that checks API-key identities hold the
// scope the request method needs: read for safe methods, write otherwise.
// Session identities always pass.
func RequireScopes() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Unauthorized(w, requestID)
				return
			}

			scope := ScopeForMethod(r.Method)
			if !identity.HasScope(scope) {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "API key lacks the "+scope+" scope", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ScopeForMethod maps an HTTP method to the API-key scope it requires.
func ScopeForMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return apikey.ScopeRead
	default:
		return apikey.ScopeWrite
	}
}
