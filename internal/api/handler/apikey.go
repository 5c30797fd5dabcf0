package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/api/validation"
	"github.com/sharedlists/sharedlists/internal/apikey"
)

type createAPIKeyRequest struct {
	Name   *string  `json:"name"`
	Scopes []string `json:"scopes"`
}

type apiKeyResponse struct {
	ID        string   `json:"id"`
	Name      *string  `json:"name"`
	Scopes    []string `json:"scopes"`
	Revoked   bool     `json:"revoked"`
	CreatedAt string   `json:"createdAt"`
}

type createdAPIKeyResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

func toAPIKeyResponse(k *apikey.APIKey) apiKeyResponse {
	scopes := k.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return apiKeyResponse{
		ID:        k.ID.String(),
		Name:      k.Name,
		Scopes:    scopes,
		Revoked:   k.Revoked,
		CreatedAt: formatTime(k.CreatedAt),
	}
}

// APIKeyHandler handles the caller's own API keys.
type APIKeyHandler struct {
	svc *apikey.Service
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(svc *apikey.Service) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

// List handles GET /api/settings/api-keys.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	keys, err := h.svc.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list api keys", "error", err, "userId", userID)
		response.Internal(w, requestID)
		return
	}

	items := make([]apiKeyResponse, 0, len(keys))
	for i := range keys {
		items = append(items, toAPIKeyResponse(&keys[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /api/settings/api-keys. The token in the response is
// the only time the plaintext is ever available.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	var req createAPIKeyRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateAPIKeyRequest(validation.CreateAPIKeyRequest{
		Name:   req.Name,
		Scopes: req.Scopes,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	var name *string
	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != "" {
			name = &trimmed
		}
	}

	created, err := h.svc.Create(r.Context(), userID, name, req.Scopes)
	if err != nil {
		if errors.Is(err, apikey.ErrNoScopes) || errors.Is(err, apikey.ErrInvalidScope) {
			validationFailed(w, []validation.FieldError{{Field: "scopes", Message: err.Error()}}, requestID)
			return
		}
		slog.Error("failed to create api key", "error", err, "userId", userID)
		response.Internal(w, requestID)
		return
	}

	slog.Info("api key created", "keyId", created.ID, "userId", userID)
	response.Success(w, http.StatusCreated, createdAPIKeyResponse{
		ID:    created.ID.String(),
		Token: created.Token,
	}, requestID)
}

// Delete handles DELETE /api/settings/api-keys/{keyID}. It revokes the key,
// or removes it entirely with ?hard=true. Keys of other users are reported
// as not found.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	keyID, ok := uuidParam(w, r, "keyID", requestID)
	if !ok {
		return
	}

	hard := r.URL.Query().Get("hard") == "true"
	var (
		found bool
		err   error
	)
	if hard {
		found, err = h.svc.Delete(r.Context(), keyID, userID)
	} else {
		found, err = h.svc.Revoke(r.Context(), keyID, userID)
	}
	if err != nil {
		slog.Error("failed to remove api key", "error", err, "keyId", keyID, "hard", hard)
		response.Internal(w, requestID)
		return
	}
	if !found {
		notFound(w, "API key", requestID)
		return
	}

	slog.Info("api key removed", "keyId", keyID, "userId", userID, "hard", hard)
	response.NoContent(w)
}
