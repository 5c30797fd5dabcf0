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

type createItemRequest struct {
	Content  string `json:"content"`
	Checked  bool   `json:"checked"`
	Position *int   `json:"position"`
}

type updateItemRequest struct {
	Content  *string `json:"content"`
	Checked  *bool   `json:"checked"`
	Position *int    `json:"position"`
}

type itemResponse struct {
	ID        string `json:"id"`
	ListID    string `json:"listId"`
	Content   string `json:"content"`
	Checked   bool   `json:"checked"`
	Position  int    `json:"position"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toItemResponse(it *list.Item) itemResponse {
	return itemResponse{
		ID:        it.ID.String(),
		ListID:    it.ListID.String(),
		Content:   it.Content,
		Checked:   it.Checked,
		Position:  it.Position,
		CreatedAt: formatTime(it.CreatedAt),
		UpdatedAt: formatTime(it.UpdatedAt),
	}
}

// ItemHandler handles the items of a list. Access is decided on the page
// that owns the list.
type ItemHandler struct {
	lists     list.Repository
	authority *permission.Authority
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(lists list.Repository, authority *permission.Authority) *ItemHandler {
	return &ItemHandler{
		lists:     lists,
		authority: authority,
	}
}

// authorize resolves the list's page and checks the caller may perform
// action on it. An unknown list is a 404, never a 403.
func (h *ItemHandler) authorize(w http.ResponseWriter, r *http.Request, action permission.Action, requestID string) (uuid.UUID, bool) {
	listID, ok := uuidParam(w, r, "listID", requestID)
	if !ok {
		return uuid.Nil, false
	}
	if _, err := h.authority.AuthorizeList(r.Context(), listID, callerID(r), action); err != nil {
		writeAccessError(w, err, requestID, "failed to authorize item access", "listId", listID, "action", action.String())
		return uuid.Nil, false
	}
	return listID, true
}

// loadItem fetches the item named in the path and checks it belongs to
// listID.
func (h *ItemHandler) loadItem(w http.ResponseWriter, r *http.Request, listID uuid.UUID, requestID string) (*list.Item, bool) {
	itemID, ok := uuidParam(w, r, "itemID", requestID)
	if !ok {
		return nil, false
	}
	it, err := h.lists.GetItem(r.Context(), itemID)
	if err != nil {
		writeAccessError(w, err, requestID, "failed to fetch item", "itemId", itemID)
		return nil, false
	}
	if it.ListID != listID {
		notFound(w, "Item", requestID)
		return nil, false
	}
	return it, true
}

// List handles GET /api/lists/{listID}/items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listID, ok := h.authorize(w, r, permission.ActionRead, requestID)
	if !ok {
		return
	}

	items, err := h.lists.ItemsByList(r.Context(), listID)
	if err != nil {
		slog.Error("failed to list items", "error", err, "listId", listID)
		response.Internal(w, requestID)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// Create handles POST /api/lists/{listID}/items.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	var req createItemRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateCreateItemRequest(validation.CreateItemRequest{
		Content:  req.Content,
		Position: req.Position,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	it := &list.Item{
		ListID:  listID,
		Content: strings.TrimSpace(req.Content),
		Checked: req.Checked,
	}
	if err := h.lists.CreateItem(r.Context(), it, req.Position); err != nil {
		slog.Error("failed to create item", "error", err, "listId", listID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toItemResponse(it), requestID)
}

// Get handles GET /api/lists/{listID}/items/{itemID}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listID, ok := h.authorize(w, r, permission.ActionRead, requestID)
	if !ok {
		return
	}

	it, ok := h.loadItem(w, r, listID, requestID)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, toItemResponse(it), requestID)
}

// Update handles PATCH /api/lists/{listID}/items/{itemID}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	var req updateItemRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateUpdateItemRequest(validation.UpdateItemRequest{
		Content:  req.Content,
		Position: req.Position,
	})
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	it, ok := h.loadItem(w, r, listID, requestID)
	if !ok {
		return
	}

	if req.Content != nil {
		it.Content = strings.TrimSpace(*req.Content)
	}
	if req.Checked != nil {
		it.Checked = *req.Checked
	}
	if req.Position != nil {
		it.Position = *req.Position
	}

	if err := h.lists.UpdateItem(r.Context(), it); err != nil {
		writeAccessError(w, err, requestID, "failed to update item", "itemId", it.ID)
		return
	}

	response.Success(w, http.StatusOK, toItemResponse(it), requestID)
}

// Delete handles DELETE /api/lists/{listID}/items/{itemID}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listID, ok := h.authorize(w, r, permission.ActionEdit, requestID)
	if !ok {
		return
	}

	it, ok := h.loadItem(w, r, listID, requestID)
	if !ok {
		return
	}

	if err := h.lists.DeleteItem(r.Context(), it.ID); err != nil {
		writeAccessError(w, err, requestID, "failed to delete item", "itemId", it.ID)
		return
	}

	response.NoContent(w)
}
