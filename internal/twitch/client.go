// Package twitch is the OAuth client for the Twitch identity provider.
package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	twitchoauth "golang.org/x/oauth2/twitch"

	"github.com/sharedlists/sharedlists/internal/user"
)

// DefaultAPIBaseURL is the Helix API root.
const DefaultAPIBaseURL = "https://api.twitch.tv/helix"

// EmailScope lets the profile call return the account email.
const EmailScope = "user:read:email"

// ErrNoProfile is returned when Helix answers without a user record.
var ErrNoProfile = errors.New("twitch returned no user profile")

// Client performs the authorization-code exchange and the profile lookup.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the OAuth authorize and token URLs.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(c *Client) {
		c.oauth.Endpoint = endpoint
	}
}

// WithAPIBaseURL overrides the Helix API root.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a Client. timeout bounds every provider call.
func NewClient(clientID, clientSecret, redirectURI string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     twitchoauth.Endpoint,
			Scopes:       []string{EmailScope},
		},
		apiBaseURL: DefaultAPIBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL returns the consent page URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a user access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging code: %w", err)
	}
	return tok.AccessToken, nil
}

type helixUser struct {
	ID              string  `json:"id"`
	Login           string  `json:"login"`
	DisplayName     string  `json:"display_name"`
	ProfileImageURL string  `json:"profile_image_url"`
	Email           *string `json:"email"`
}

type helixUsersResponse struct {
	Data []helixUser `json:"data"`
}

// GetUser fetches the profile of the account owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*user.ProviderInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := c.oauth.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	hc.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("Client-Id", c.oauth.ClientID)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("profile request returned status %d", resp.StatusCode)
	}

	var body helixUsersResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, ErrNoProfile
	}

	u := body.Data[0]
	return &user.ProviderInfo{
		TwitchID:    u.ID,
		Username:    u.Login,
		DisplayName: nonEmpty(u.DisplayName),
		AvatarURL:   nonEmpty(u.ProfileImageURL),
		Email:       u.Email,
	}, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
