package auth

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID    uuid.UUID
	TwitchID  string
	Username  string
	ExpiresAt time.Time // zero for API keys
	Scopes    []string  // nil for session credentials (full privileges)
}

// IsSession reports whether the identity came from a session token.
func (i *Identity) IsSession() bool {
	return i.Scopes == nil
}

// HasScope reports whether the identity may use the named capability.
// Session identities hold every scope.
func (i *Identity) HasScope(scope string) bool {
	if i.IsSession() {
		return true
	}
	return slices.Contains(i.Scopes, scope)
}
