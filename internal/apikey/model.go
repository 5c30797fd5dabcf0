package apikey

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents a row in the api_keys table. TokenHash is the SHA-256
// hex digest of the plaintext token; the plaintext is never stored.
type APIKey struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      *string
	TokenHash string
	Scopes    []string
	Revoked   bool
	CreatedAt time.Time
}

// Created is the result of issuing a key. Token is the plaintext and is
// only ever available here.
type Created struct {
	ID    uuid.UUID
	Token string
}
