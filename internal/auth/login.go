package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharedlists/sharedlists/internal/user"
)

// Provider is the OAuth identity provider. twitch.Client satisfies it.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	GetUser(ctx context.Context, accessToken string) (*user.ProviderInfo, error)
}

// UserStore is the subset of user.Repository used at login.
type UserStore interface {
	FindByTwitchID(ctx context.Context, twitchID string) (*user.User, error)
	Create(ctx context.Context, info user.ProviderInfo) (*user.User, error)
	UpdateProviderInfo(ctx context.Context, info user.ProviderInfo) (*user.User, error)
}

// LoginResult is the outcome of a completed OAuth login.
type LoginResult struct {
	User      *user.User
	Token     string
	ExpiresAt time.Time
}

// LoginService completes OAuth logins and issues session tokens.
type LoginService struct {
	provider Provider
	users    UserStore
	sessions *SessionManager
}

// NewLoginService creates a new LoginService.
func NewLoginService(provider Provider, users UserStore, sessions *SessionManager) *LoginService {
	return &LoginService{
		provider: provider,
		users:    users,
		sessions: sessions,
	}
}

// AuthURL returns the provider consent URL carrying state.
func (s *LoginService) AuthURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// Login exchanges code with the provider, creates or refreshes the local
// user and issues a session token. Provider failures are not retried.
func (s *LoginService) Login(ctx context.Context, code string) (*LoginResult, error) {
	accessToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	info, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching provider profile: %w", err)
	}

	u, err := s.upsertUser(ctx, *info)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.sessions.Issue(u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *LoginService) upsertUser(ctx context.Context, info user.ProviderInfo) (*user.User, error) {
	_, err := s.users.FindByTwitchID(ctx, info.TwitchID)
	switch {
	case err == nil:
		return s.update(ctx, info)
	case !errors.Is(err, user.ErrUserNotFound):
		return nil, fmt.Errorf("finding user by twitch id: %w", err)
	}

	u, err := s.users.Create(ctx, info)
	if errors.Is(err, user.ErrDuplicateTwitchID) {
		// Lost a race with a concurrent first login.
		return s.update(ctx, info)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (s *LoginService) update(ctx context.Context, info user.ProviderInfo) (*user.User, error) {
	u, err := s.users.UpdateProviderInfo(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}
