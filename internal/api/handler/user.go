package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/user"
)

// minSearchQueryLength is the shortest query that hits the store.
const minSearchQueryLength = 2

type publicUserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

func toPublicUserResponse(u *user.User) publicUserResponse {
	return publicUserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// UserHandler handles user lookup for sharing.
type UserHandler struct {
	users user.Repository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// Search handles GET /api/users/search?q=. The caller is never in the
// results, and a query shorter than two characters returns nothing.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < minSearchQueryLength {
		response.Success(w, http.StatusOK, []publicUserResponse{}, requestID)
		return
	}

	users, err := h.users.Search(r.Context(), q, callerID(r))
	if err != nil {
		slog.Error("failed to search users", "error", err)
		response.Internal(w, requestID)
		return
	}

	items := make([]publicUserResponse, 0, len(users))
	for i := range users {
		items = append(items, toPublicUserResponse(&users[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}
