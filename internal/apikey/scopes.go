package apikey

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Scope names understood by the HTTP layer. Keys may carry other
// well-formed scopes; they simply grant nothing.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

const scopeSeparator = ","

var scopeRegex = regexp.MustCompile(`^[a-z]+$`)

// ErrNoScopes is returned when a key is requested without any scope.
var ErrNoScopes = errors.New("at least one scope must be provided")

// ErrInvalidScope is returned when a scope is not lowercase alphabetic.
var ErrInvalidScope = errors.New("invalid scope")

// NormalizeScopes trims every scope and checks it is non-empty lowercase
// alphabetic. Scopes form a set: repeats are dropped and first-seen order
// is preserved.
func NormalizeScopes(scopes []string) ([]string, error) {
	if len(scopes) == 0 {
		return nil, ErrNoScopes
	}
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		v := strings.TrimSpace(s)
		if !scopeRegex.MatchString(v) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// IsValidScope reports whether s is a well-formed scope name.
func IsValidScope(s string) bool {
	return scopeRegex.MatchString(s)
}

// EncodeScopes joins scopes into their stored form.
func EncodeScopes(scopes []string) string {
	return strings.Join(scopes, scopeSeparator)
}

// DecodeScopes splits a stored scope string. The empty string decodes to an
// empty, non-nil slice.
func DecodeScopes(stored string) []string {
	if stored == "" {
		return []string{}
	}
	parts := strings.Split(stored, scopeSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
