package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"
)

// StateCookieName carries the OAuth state between login and callback.
const StateCookieName = "oauth_state"

// StateTTL bounds how long a login attempt may take.
const StateTTL = 10 * time.Minute

// NewState returns a random URL-safe OAuth state value.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// StatesMatch compares the state echoed by the provider with the one
// stored in the cookie. Empty values never match.
func StatesMatch(cookieState, queryState string) bool {
	if cookieState == "" || queryState == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieState), []byte(queryState)) == 1
}
