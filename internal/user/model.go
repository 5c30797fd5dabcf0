package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table. TwitchID is the identity
// provider's stable id for the account.
type User struct {
	ID          uuid.UUID
	TwitchID    string
	Username    string
	DisplayName *string
	AvatarURL   *string
	Email       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProviderInfo holds the provider-sourced fields refreshed on every login.
type ProviderInfo struct {
	TwitchID    string
	Username    string
	DisplayName *string
	AvatarURL   *string
	Email       *string
}
