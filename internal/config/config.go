package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MinJWTSecretLength is the minimum accepted length of JWT_SECRET in bytes.
const MinJWTSecretLength = 32

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port               int           `envconfig:"PORT" default:"8080"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	Version            string        `envconfig:"VERSION" default:"dev"`
	DatabaseURL        string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"5"`
	JWTSecret          string        `envconfig:"JWT_SECRET" required:"true"`
	TwitchClientID     string        `envconfig:"TWITCH_CLIENT_ID" required:"true"`
	TwitchClientSecret string        `envconfig:"TWITCH_CLIENT_SECRET" required:"true"`
	TwitchRedirectURI  string        `envconfig:"TWITCH_REDIRECT_URI" required:"true"`
	FrontendURL        string        `envconfig:"FRONTEND_URL" required:"true"`
	RateLimitAuth      int           `envconfig:"RATE_LIMIT_AUTH" default:"20"`
	ProviderTimeout    time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables into a Config struct
// and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig cannot express as tags.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}
	if _, err := c.FrontendOrigin(); err != nil {
		return err
	}
	if c.DBMaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be at least 1")
	}
	return nil
}

// FrontendOrigin returns the scheme://host[:port] origin of FRONTEND_URL.
// An unparseable URL or one without a host is an error; there is no
// allow-any-origin fallback.
func (c *Config) FrontendOrigin() (string, error) {
	u, err := url.Parse(c.FrontendURL)
	if err != nil {
		return "", fmt.Errorf("FRONTEND_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("FRONTEND_URL must use http or https")
	}
	if u.Host == "" {
		return "", errors.New("FRONTEND_URL must contain a host")
	}
	return u.Scheme + "://" + u.Host, nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	u, err := url.Parse(c.FrontendURL)
	if err != nil {
		return true
	}
	return u.Scheme == "https"
}
