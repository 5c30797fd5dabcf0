package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/api/validation"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/permission"
)

const (
	timeFormat   = "2006-01-02T15:04:05Z"
	maxBodyBytes = 1 << 20
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// decodeJSON reads the request body into dst. It writes the 400 itself and
// reports false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

// uuidParam parses the named chi URL parameter. It writes the 400 itself and
// reports false when the value is not a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}

func validationFailed(w http.ResponseWriter, errs []validation.FieldError, requestID string) {
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", errs, requestID)
}

func notFound(w http.ResponseWriter, what, requestID string) {
	response.Err(w, http.StatusNotFound, "NOT_FOUND", what+" not found", requestID)
}

// callerID returns the authenticated user's id. Routes using it sit behind
// middleware.Authenticate.
func callerID(r *http.Request) uuid.UUID {
	return middleware.GetIdentity(r.Context()).UserID
}

// writeAccessError maps authorization and lookup failures to responses.
// Anything unrecognised is logged with msg and reported as a 500.
func writeAccessError(w http.ResponseWriter, err error, requestID, msg string, attrs ...any) {
	switch {
	case errors.Is(err, permission.ErrForbidden):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action", requestID)
	case errors.Is(err, page.ErrPageNotFound):
		notFound(w, "Page", requestID)
	case errors.Is(err, list.ErrListNotFound):
		notFound(w, "List", requestID)
	case errors.Is(err, list.ErrItemNotFound):
		notFound(w, "Item", requestID)
	default:
		slog.Error(msg, append([]any{"error", err, "requestId", requestID}, attrs...)...)
		response.Internal(w, requestID)
	}
}
