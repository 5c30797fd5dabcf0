package auth

import (
	"net/http"
	"strings"
)

// Credential carrier header, scheme and cookie names.
const (
	APIKeyHeader      = "X-Api-Key"
	APIKeyScheme      = "ApiKey"
	BearerScheme      = "Bearer"
	SessionCookieName = "auth_token"
)

// CarrierKind identifies where a request's credential was found.
type CarrierKind int

// Carrier kinds in resolution priority order.
const (
	CarrierNone CarrierKind = iota
	CarrierAPIKeyHeader
	CarrierAPIKeyAuth
	CarrierBearerAuth
	CarrierSessionCookie
)

func (k CarrierKind) String() string {
	switch k {
	case CarrierAPIKeyHeader:
		return "api_key_header"
	case CarrierAPIKeyAuth:
		return "api_key_auth"
	case CarrierBearerAuth:
		return "bearer_auth"
	case CarrierSessionCookie:
		return "session_cookie"
	default:
		return "none"
	}
}

// IsAPIKey reports whether the carrier holds an API key token.
func (k CarrierKind) IsAPIKey() bool {
	return k == CarrierAPIKeyHeader || k == CarrierAPIKeyAuth
}

// Carrier is the single credential selected from a request.
type Carrier struct {
	Kind  CarrierKind
	Token string
}

// ParseCarrier picks the highest-priority credential present on r:
// the X-Api-Key header, then an Authorization header with the ApiKey or
// Bearer scheme, then the auth_token cookie. An Authorization header with
// any other scheme is ignored. Scheme names match case-insensitively.
func ParseCarrier(r *http.Request) Carrier {
	if v := strings.TrimSpace(r.Header.Get(APIKeyHeader)); v != "" {
		return Carrier{Kind: CarrierAPIKeyHeader, Token: v}
	}

	if authz := r.Header.Get("Authorization"); authz != "" {
		if token, ok := cutScheme(authz, APIKeyScheme); ok {
			return Carrier{Kind: CarrierAPIKeyAuth, Token: token}
		}
		if token, ok := cutScheme(authz, BearerScheme); ok {
			return Carrier{Kind: CarrierBearerAuth, Token: token}
		}
	}

	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return Carrier{Kind: CarrierSessionCookie, Token: c.Value}
	}

	return Carrier{Kind: CarrierNone}
}

// cutScheme returns the credential following "<scheme> " in header.
func cutScheme(header, scheme string) (string, bool) {
	if len(header) <= len(scheme) || header[len(scheme)] != ' ' {
		return "", false
	}
	if !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	return strings.TrimSpace(header[len(scheme)+1:]), true
}
