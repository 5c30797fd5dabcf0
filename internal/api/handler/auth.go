package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/auth"
	"github.com/sharedlists/sharedlists/internal/user"
)

// Authenticator runs the OAuth login flow. auth.LoginService satisfies it.
type Authenticator interface {
	AuthURL(state string) string
	Login(ctx context.Context, code string) (*auth.LoginResult, error)
}

// UserFinder looks users up by id.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type meResponse struct {
	ID          string   `json:"id"`
	TwitchID    string   `json:"twitchId"`
	Username    string   `json:"username"`
	DisplayName *string  `json:"displayName"`
	AvatarURL   *string  `json:"avatarUrl"`
	Email       *string  `json:"email"`
	Scopes      []string `json:"scopes"`
	ExpiresAt   *string  `json:"expiresAt"`
}

// AuthHandler handles the OAuth login flow and session endpoints.
type AuthHandler struct {
	login         Authenticator
	users         UserFinder
	frontendURL   string
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. frontendURL is where a
// completed login is redirected to.
func NewAuthHandler(login Authenticator, users UserFinder, frontendURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		login:         login,
		users:         users,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		secureCookies: secureCookies,
	}
}

// Login handles GET /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	state, err := auth.NewState()
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err, "requestId", requestID)
		response.Internal(w, requestID)
		return
	}

	http.SetCookie(w, h.stateCookie(state, int(auth.StateTTL.Seconds())))
	http.Redirect(w, r, h.login.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/callback.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	// The state is single use whatever the outcome.
	var cookieState string
	if c, err := r.Cookie(auth.StateCookieName); err == nil {
		cookieState = c.Value
	}
	http.SetCookie(w, h.stateCookie("", -1))

	if q.Get("error") != "" {
		http.Redirect(w, r, h.frontendURL+"/auth/callback?error=access_denied", http.StatusTemporaryRedirect)
		return
	}

	if !auth.StatesMatch(cookieState, q.Get("state")) {
		response.Err(w, http.StatusBadRequest, "INVALID_STATE", "OAuth state does not match", requestID)
		return
	}

	code := q.Get("code")
	if code == "" {
		response.Err(w, http.StatusBadRequest, "MISSING_CODE", "Authorization code is required", requestID)
		return
	}

	result, err := h.login.Login(r.Context(), code)
	if err != nil {
		slog.Error("oauth login failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		return
	}

	slog.Info("user logged in", "userId", result.User.ID, "requestId", requestID)
	http.SetCookie(w, h.sessionCookie(result.Token, int(auth.SessionTTL.Seconds())))
	http.Redirect(w, r, h.frontendURL+"/auth/callback", http.StatusTemporaryRedirect)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	response.NoContent(w)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	u, err := h.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Unauthorized(w, requestID)
			return
		}
		slog.Error("failed to fetch current user", "error", err, "userId", identity.UserID, "requestId", requestID)
		response.Internal(w, requestID)
		return
	}

	var expiresAt *string
	if !identity.ExpiresAt.IsZero() {
		s := formatTime(identity.ExpiresAt)
		expiresAt = &s
	}

	response.Success(w, http.StatusOK, meResponse{
		ID:          u.ID.String(),
		TwitchID:    u.TwitchID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Email:       u.Email,
		Scopes:      identity.Scopes,
		ExpiresAt:   expiresAt,
	}, requestID)
}

// sessionCookie builds the auth cookie. maxAge < 0 deletes it.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.StateCookieName,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
