package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/api/validation"
	"github.com/sharedlists/sharedlists/internal/permission"
	"github.com/sharedlists/sharedlists/internal/user"
)

type grantPermissionRequest struct {
	UserID  string `json:"userId"`
	CanEdit bool   `json:"canEdit"`
}

type updatePermissionRequest struct {
	CanEdit *bool `json:"canEdit"`
}

type permissionResponse struct {
	ID        string             `json:"id"`
	PageID    string             `json:"pageId"`
	UserID    string             `json:"userId"`
	CanEdit   bool               `json:"canEdit"`
	GrantedBy string             `json:"grantedBy"`
	CreatedAt string             `json:"createdAt"`
	User      publicUserResponse `json:"user"`
}

func toPermissionResponse(p *permission.WithUser) permissionResponse {
	return permissionResponse{
		ID:        p.ID.String(),
		PageID:    p.PageID.String(),
		UserID:    p.UserID.String(),
		CanEdit:   p.CanEdit,
		GrantedBy: p.GrantedBy.String(),
		CreatedAt: formatTime(p.CreatedAt),
		User:      toPublicUserResponse(&p.User),
	}
}

// PermissionHandler manages the sharing list of a page. Only the page
// creator reaches any of its operations.
type PermissionHandler struct {
	authority *permission.Authority
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(authority *permission.Authority) *PermissionHandler {
	return &PermissionHandler{authority: authority}
}

// requireCreator parses the page id and checks the caller created it.
func (h *PermissionHandler) requireCreator(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return uuid.Nil, false
	}
	if _, err := h.authority.RequireCreator(r.Context(), pageID, callerID(r)); err != nil {
		writeAccessError(w, err, requestID, "failed to authorize permission management", "pageId", pageID)
		return uuid.Nil, false
	}
	return pageID, true
}

// List handles GET /api/pages/{pageID}/permissions.
func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.requireCreator(w, r, requestID)
	if !ok {
		return
	}

	perms, err := h.authority.ListPermissions(r.Context(), pageID)
	if err != nil {
		slog.Error("failed to list permissions", "error", err, "pageId", pageID)
		response.Internal(w, requestID)
		return
	}

	items := make([]permissionResponse, 0, len(perms))
	for i := range perms {
		items = append(items, toPermissionResponse(&perms[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Grant handles POST /api/pages/{pageID}/permissions.
func (h *PermissionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.requireCreator(w, r, requestID)
	if !ok {
		return
	}

	var req grantPermissionRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateGrantPermissionRequest(validation.GrantPermissionRequest{UserID: req.UserID})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}
	target := uuid.MustParse(req.UserID)

	perm, err := h.authority.Grant(r.Context(), pageID, target, req.CanEdit, callerID(r))
	if err != nil {
		switch {
		case errors.Is(err, permission.ErrPermissionExists):
			response.Err(w, http.StatusBadRequest, "BAD_REQUEST", "User already has permission for this page", requestID)
		case errors.Is(err, permission.ErrCannotGrantCreator):
			response.Err(w, http.StatusBadRequest, "BAD_REQUEST", "The page creator already has full access", requestID)
		case errors.Is(err, user.ErrUserNotFound):
			notFound(w, "User", requestID)
		default:
			writeAccessError(w, err, requestID, "failed to grant permission", "pageId", pageID)
		}
		return
	}

	slog.Info("permission granted", "pageId", pageID, "userId", target, "canEdit", req.CanEdit)
	response.Success(w, http.StatusCreated, toPermissionResponse(perm), requestID)
}

// Update handles PATCH /api/pages/{pageID}/permissions/{permissionID}.
func (h *PermissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	permissionID, ok := uuidParam(w, r, "permissionID", requestID)
	if !ok {
		return
	}

	pageID, ok := h.requireCreator(w, r, requestID)
	if !ok {
		return
	}

	var req updatePermissionRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateUpdatePermissionRequest(validation.UpdatePermissionRequest{CanEdit: req.CanEdit}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	perm, err := h.authority.Update(r.Context(), pageID, permissionID, *req.CanEdit)
	if err != nil {
		if errors.Is(err, permission.ErrPermissionNotFound) {
			notFound(w, "Permission", requestID)
			return
		}
		writeAccessError(w, err, requestID, "failed to update permission", "pageId", pageID, "permissionId", permissionID)
		return
	}

	response.Success(w, http.StatusOK, toPermissionResponse(perm), requestID)
}

// Revoke handles DELETE /api/pages/{pageID}/permissions/{permissionID}.
// Revoking a permission that does not exist succeeds.
func (h *PermissionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	permissionID, ok := uuidParam(w, r, "permissionID", requestID)
	if !ok {
		return
	}

	pageID, ok := h.requireCreator(w, r, requestID)
	if !ok {
		return
	}

	if err := h.authority.Revoke(r.Context(), pageID, permissionID); err != nil {
		writeAccessError(w, err, requestID, "failed to revoke permission", "pageId", pageID, "permissionId", permissionID)
		return
	}

	slog.Info("permission revoked", "pageId", pageID, "permissionId", permissionID)
	response.NoContent(w)
}
