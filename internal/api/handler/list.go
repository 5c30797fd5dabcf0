package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/api/validation"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/permission"
)

type createListRequest struct {
	Title    string `json:"title"`
	Position *int   `json:"position"`
}

type updateListRequest struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

type listResponse struct {
	ID        string `json:"id"`
	PageID    string `json:"pageId"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type listWithItemsResponse struct {
	listResponse
	Items []itemResponse `json:"items"`
}

func toListResponse(l *list.List) listResponse {
	return listResponse{
		ID:        l.ID.String(),
		PageID:    l.PageID.String(),
		Title:     l.Title,
		Position:  l.Position,
		CreatedAt: formatTime(l.CreatedAt),
		UpdatedAt: formatTime(l.UpdatedAt),
	}
}

func toListWithItemsResponse(l *list.List, items []list.Item) listWithItemsResponse {
	resp := listWithItemsResponse{
		listResponse: toListResponse(l),
		Items:        make([]itemResponse, 0, len(items)),
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	return resp
}

// loadListsWithItems fetches the lists of a page with their items, in order.
func loadListsWithItems(r *http.Request, lists list.Repository, pageID uuid.UUID) ([]listWithItemsResponse, error) {
	ls, err := lists.ListsByPage(r.Context(), pageID)
	if err != nil {
		return nil, err
	}
	items, err := lists.ItemsByPage(r.Context(), pageID)
	if err != nil {
		return nil, err
	}

	out := make([]listWithItemsResponse, 0, len(ls))
	for _, wi := range list.Assemble(ls, items) {
		out = append(out, toListWithItemsResponse(&wi.List, wi.Items))
	}
	return out, nil
}

// ListHandler handles the lists of a page. Lists inherit the page's access
// rules.
type ListHandler struct {
	lists     list.Repository
	authority *permission.Authority
}

// NewListHandler creates a new ListHandler.
func NewListHandler(lists list.Repository, authority *permission.Authority) *ListHandler {
	return &ListHandler{
		lists:     lists,
		authority: authority,
	}
}

// authorize parses the page id and checks the caller may perform action.
func (h *ListHandler) authorize(w http.ResponseWriter, r *http.Request, action permission.Action, requestID string) (uuid.UUID, bool) {
	pageID, ok := uuidParam(w, r, "pageID", requestID)
	if !ok {
		return uuid.Nil, false
	}
	if _, _, err := h.authority.Authorize(r.Context(), pageID, callerID(r), action); err != nil {
		writeAccessError(w, err, requestID, "failed to authorize list access", "pageId", pageID, "action", action.String())
		return uuid.Nil, false
	}
	return pageID, true
}

// loadList fetches the list named in the path and checks it belongs to
// pageID. A list on another page is reported as not found.
func (h *ListHandler) loadList(w http.ResponseWriter, r *http.Request, pageID uuid.UUID, requestID string) (*list.List, bool) {
	listID, ok := uuidParam(w, r, "listID", requestID)
	if !ok {
		return nil, false
	}
	l, err := h.lists.GetList(r.Context(), listID)
	if err != nil {
		writeAccessError(w, err, requestID, "failed to fetch list", "listId", listID)
		return nil, false
	}
	if l.PageID != pageID {
		notFound(w, "List", requestID)
		return nil, false
	}
	return l, true
}

// List handles GET /api/pages/{pageID}/lists.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.authorize(w, r, permission.ActionRead, requestID)
	if !ok {
		return
	}

	lists, err := loadListsWithItems(r, h.lists, pageID)
	if err != nil {
		slog.Error("failed to list lists", "error", err, "pageId", pageID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusOK, lists, requestID)
}

// Create handles POST /api/pages/{pageID}/lists.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	var req createListRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateListRequest(validation.CreateListRequest{
		Title:    req.Title,
		Position: req.Position,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	l := &list.List{
		PageID: pageID,
		Title:  strings.TrimSpace(req.Title),
	}
	if err := h.lists.CreateList(r.Context(), l, req.Position); err != nil {
		slog.Error("failed to create list", "error", err, "pageId", pageID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toListWithItemsResponse(l, nil), requestID)
}

// Get handles GET /api/pages/{pageID}/lists/{listID}.
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.authorize(w, r, permission.ActionRead, requestID)
	if !ok {
		return
	}

	l, ok := h.loadList(w, r, pageID, requestID)
	if !ok {
		return
	}

	items, err := h.lists.ItemsByList(r.Context(), l.ID)
	if err != nil {
		slog.Error("failed to list items", "error", err, "listId", l.ID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusOK, toListWithItemsResponse(l, items), requestID)
}

// Update handles PATCH /api/pages/{pageID}/lists/{listID}.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	var req updateListRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateUpdateListRequest(validation.UpdateListRequest{
		Title:    req.Title,
		Position: req.Position,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	l, ok := h.loadList(w, r, pageID, requestID)
	if !ok {
		return
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Position != nil {
		l.Position = *req.Position
	}

	if err := h.lists.UpdateList(r.Context(), l); err != nil {
		writeAccessError(w, err, requestID, "failed to update list", "listId", l.ID)
		return
	}

	response.Success(w, http.StatusOK, toListResponse(l), requestID)
}

// Delete handles DELETE /api/pages/{pageID}/lists/{listID}. Items go with
// the list.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pageID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	l, ok := h.loadList(w, r, pageID, requestID)
	if !ok {
		return
	}

	if err := h.lists.DeleteList(r.Context(), l.ID); err != nil {
		writeAccessError(w, err, requestID, "failed to delete list", "listId", l.ID)
		return
	}

	response.NoContent(w)
}
