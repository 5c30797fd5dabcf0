package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharedlists/sharedlists/internal/api/middleware"
	"github.com/sharedlists/sharedlists/internal/api/response"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
)

type publicPageResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description"`
	PublicSlug  string                  `json:"publicSlug"`
	UpdatedAt   string                  `json:"updatedAt"`
	Lists       []listWithItemsResponse `json:"lists"`
}

// PublicHandler serves pages exposed under a public slug. It needs no
// credential and never reveals who created the page.
type PublicHandler struct {
	pages page.Repository
	lists list.Repository
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(pages page.Repository, lists list.Repository) *PublicHandler {
	return &PublicHandler{
		pages: pages,
		lists: lists,
	}
}

// Get handles GET /api/public/{slug}.
func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	slug := chi.URLParam(r, "slug")

	p, err := h.pages.GetByPublicSlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			notFound(w, "Page", requestID)
			return
		}
		slog.Error("failed to fetch public page", "error", err)
		response.Internal(w, requestID)
		return
	}

	lists, err := loadListsWithItems(r, h.lists, p.ID)
	if err != nil {
		slog.Error("failed to load public page lists", "error", err, "pageId", p.ID)
		response.Internal(w, requestID)
		return
	}

	response.Success(w, http.StatusOK, publicPageResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		PublicSlug:  slug,
		UpdatedAt:   formatTime(p.UpdatedAt),
		Lists:       lists,
	}, requestID)
}
