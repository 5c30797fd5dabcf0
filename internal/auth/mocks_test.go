package auth_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/user"
)

// mockKeys is a hand-written mock implementing auth.KeyVerifier.
type mockKeys struct {
	verifyFn func(ctx context.Context, token string) (*apikey.APIKey, error)
	calls    int
}

func (m *mockKeys) Verify(ctx context.Context, token string) (*apikey.APIKey, error) {
	m.calls++
	if m.verifyFn != nil {
		return m.verifyFn(ctx, token)
	}
	return nil, apikey.ErrKeyNotFound
}

// mockUsers is a hand-written mock implementing both auth.UserFinder and
// auth.UserStore.
type mockUsers struct {
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*user.User, error)
	findByTwitchIDFn func(ctx context.Context, twitchID string) (*user.User, error)
	createFn         func(ctx context.Context, info user.ProviderInfo) (*user.User, error)
	updateFn         func(ctx context.Context, info user.ProviderInfo) (*user.User, error)
}

func (m *mockUsers) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUsers) FindByTwitchID(ctx context.Context, twitchID string) (*user.User, error) {
	if m.findByTwitchIDFn != nil {
		return m.findByTwitchIDFn(ctx, twitchID)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUsers) Create(ctx context.Context, info user.ProviderInfo) (*user.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, info)
	}
	return userFromInfo(info), nil
}

func (m *mockUsers) UpdateProviderInfo(ctx context.Context, info user.ProviderInfo) (*user.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, info)
	}
	return userFromInfo(info), nil
}

func userFromInfo(info user.ProviderInfo) *user.User {
	now := time.Now()
	return &user.User{
		ID:          uuid.New(),
		TwitchID:    info.TwitchID,
		Username:    info.Username,
		DisplayName: info.DisplayName,
		AvatarURL:   info.AvatarURL,
		Email:       info.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func knownUsers(users ...*user.User) *mockUsers {
	byID := make(map[uuid.UUID]*user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &mockUsers{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*user.User, error) {
			if u, ok := byID[id]; ok {
				return u, nil
			}
			return nil, user.ErrUserNotFound
		},
	}
}

func newTestUser(username string) *user.User {
	return &user.User{ID: uuid.New(), TwitchID: "tw-" + username, Username: username}
}
