package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/api/validation"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/permission"
)

type createPageRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updatePageRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type setPublicSlugRequest struct {
	PublicSlug *string `json:"publicSlug"`
}

type pageResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CreatorID   string  `json:"creatorId"`
	PublicSlug  *string `json:"publicSlug"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type pageWithRoleResponse struct {
	pageResponse
	Role    string `json:"role"`
	CanEdit bool   `json:"canEdit"`
}

type pageDetailResponse struct {
	pageWithRoleResponse
	Lists []listWithItemsResponse `json:"lists"`
}

func toPageResponse(p *page.Page) pageResponse {
	return pageResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		CreatorID:   p.CreatorID.String(),
		PublicSlug:  p.PublicSlug,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toPageWithRoleResponse(p *page.Page, role permission.Role, canEdit bool) pageWithRoleResponse {
	return pageWithRoleResponse{
		pageResponse: toPageResponse(p),
		Role:         string(role),
		CanEdit:      canEdit,
	}
}

// PageHandler handles page endpoints. Every operation is authorized
// against the page through the Authority.
type PageHandler struct {
	pages     page.Repository
	lists     list.Repository
	authority *permission.Authority
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(pages page.Repository, lists list.Repository, authority *permission.Authority) *PageHandler {
	return &PageHandler{
		pages:     pages,
		lists:     lists,
		authority: authority,
	}
}

// List handles GET /api/pages: created pages first, then shared ones.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	pages, err := h.authority.ListForUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list pages", "error", err, "userId", userID)
		response.Internal(w, requestID)
		return
	}

	items := make([]pageWithRoleResponse, 0, len(pages))
	for i := range pages {
		items = append(items, toPageWithRoleResponse(&pages[i].Page, pages[i].Role, pages[i].CanEdit))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /api/pages.
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createPageRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreatePageRequest(validation.CreatePageRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	p := &page.Page{
		Title:       strings.TrimSpace(req.Title),
		Description: emptyToNil(req.Description),
		CreatorID:   callerID(r),
	}
	if err := h.pages.Create(r.Context(), p); err != nil {
		slog.Error("failed to create page", "error", err, "userId", p.CreatorID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toPageWithRoleResponse(p, permission.RoleCreator, true), requestID)
}

// Get handles GET /api/pages/{pageID}. The page comes with its lists and
// their items.
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return
	}

	p, canEdit, err := h.authority.Authorize(r.Context(), pageID, userID, permission.ActionRead)
	if err != nil {
		writeAccessError(w, err, requestID, "failed to authorize page read", "pageId", pageID)
		return
	}

	lists, err := loadListsWithItems(r, h.lists, pageID)
	if err != nil {
		slog.Error("failed to load page lists", "error", err, "pageId", pageID)
		response.Internal(w, requestID)
		return
	}

	role := permission.RoleShared
	if p.IsCreator(userID) {
		role = permission.RoleCreator
	}
	response.Success(w, http.StatusOK, pageDetailResponse{
		pageWithRoleResponse: toPageWithRoleResponse(p, role, canEdit),
		Lists:                lists,
	}, requestID)
}

// Update handles PATCH /api/pages/{pageID}. Editors may rename a page; an
// empty description clears it.
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return
	}

	p, _, err := h.authority.Authorize(r.Context(), pageID, callerID(r), permission.ActionEdit)
	if err != nil {
		writeAccessError(w, err, requestID, "failed to authorize page update", "pageId", pageID)
		return
	}

	var req updatePageRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateUpdatePageRequest(validation.UpdatePageRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = emptyToNil(req.Description)
	}

	if err := h.pages.Update(r.Context(), p); err != nil {
		writeAccessError(w, err, requestID, "failed to update page", "pageId", pageID)
		return
	}

	response.Success(w, http.StatusOK, toPageResponse(p), requestID)
}

// Delete handles DELETE /api/pages/{pageID}. Creator only.
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := callerID(r)

	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return
	}

	if _, err := h.authority.RequireCreator(r.Context(), pageID, userID); err != nil {
		writeAccessError(w, err, requestID, "failed to authorize page delete", "pageId", pageID)
		return
	}

	if err := h.pages.Delete(r.Context(), pageID); err != nil {
		writeAccessError(w, err, requestID, "failed to delete page", "pageId", pageID)
		return
	}

	slog.Info("page deleted", "pageId", pageID, "userId", userID)
	response.NoContent(w)
}

// SetPublicSlug handles PUT /api/pages/{pageID}/public-slug. A null slug
// withdraws public access. Creator only.
func (h *PageHandler) SetPublicSlug(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return
	}

	if _, err := h.authority.RequireCreator(r.Context(), pageID, callerID(r)); err != nil {
		writeAccessError(w, err, requestID, "failed to authorize public slug change", "pageId", pageID)
		return
	}

	var req setPublicSlugRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidatePublicSlug(req.PublicSlug); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	p, err := h.pages.SetPublicSlug(r.Context(), pageID, req.PublicSlug)
	if err != nil {
		if errors.Is(err, page.ErrSlugTaken) {
			response.Err(w, http.StatusBadRequest, "BAD_REQUEST", "This slug is already in use", requestID)
			return
		}
		writeAccessError(w, err, requestID, "failed to set public slug", "pageId", pageID)
		return
	}

	response.Success(w, http.StatusOK, toPageResponse(p), requestID)
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
