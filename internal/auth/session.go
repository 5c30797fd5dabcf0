package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/user"
)

// SessionTTL is the lifetime of a session token and of its cookie.
const SessionTTL = 7 * 24 * time.Hour

// Claims are the signed contents of a session token. Scopes are never
// embedded; a session is always full-privilege.
type Claims struct {
	TwitchID string `json:"twitch_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	now    func() time.Time
}

// NewSessionManager creates a SessionManager signing with secret.
func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	return &SessionManager{secret: m.secret, now: now}
}

// Issue signs a token for u that expires SessionTTL from now.
func (m *SessionManager) Issue(u *user.User) (string, time.Time, error) {
	expiresAt := m.now().Add(SessionTTL).Truncate(jwt.TimePrecision)
	claims := &Claims{
		TwitchID: u.TwitchID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a session token. Every failure, whether a bad
// signature, expiry or malformed input, is ErrInvalidCredential.
func (m *SessionManager) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	return &Identity{
		UserID:    userID,
		TwitchID:  claims.TwitchID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
