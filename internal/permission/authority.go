package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/user"
)

// ErrForbidden is returned when the caller lacks the permission an action needs.
var ErrForbidden = errors.New("forbidden")

// ErrCannotGrantCreator is returned when a grant targets the page creator,
// who already holds full access.
var ErrCannotGrantCreator = errors.New("page creator cannot be granted a permission")

// PageStore is the subset of page.Repository the authority reads.
type PageStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*page.Page, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]page.Page, error)
}

// UserFinder looks users up by id.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// ListResolver maps a list to its owning page. It returns
// list.ErrListNotFound for unknown lists.
type ListResolver interface {
	PageIDForList(ctx context.Context, listID uuid.UUID) (uuid.UUID, error)
}

// Authority answers access questions for pages and everything nested under
// them, and manages the sharing list of a page.
type Authority struct {
	pages PageStore
	perms Repository
	users UserFinder
	lists ListResolver
}

// NewAuthority creates a new Authority.
func NewAuthority(pages PageStore, perms Repository, users UserFinder, lists ListResolver) *Authority {
	return &Authority{
		pages: pages,
		perms: perms,
		users: users,
		lists: lists,
	}
}

// grantOf returns the caller's standing on p: whether they may read and
// whether they may edit.
func (a *Authority) grantOf(ctx context.Context, p *page.Page, userID uuid.UUID) (canRead, canEdit bool, err error) {
	if p.IsCreator(userID) {
		return true, true, nil
	}
	perm, err := a.perms.Find(ctx, p.ID, userID)
	if err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("looking up permission: %w", err)
	}
	return true, perm.CanEdit, nil
}

// CheckAccess reports whether userID may read the page. A missing page
// yields false.
func (a *Authority) CheckAccess(ctx context.Context, pageID, userID uuid.UUID) (bool, error) {
	p, err := a.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("fetching page: %w", err)
	}
	canRead, _, err := a.grantOf(ctx, p, userID)
	return canRead, err
}

// CheckEdit reports whether userID may modify the page and its content.
// A missing page yields false.
func (a *Authority) CheckEdit(ctx context.Context, pageID, userID uuid.UUID) (bool, error) {
	p, err := a.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("fetching page: %w", err)
	}
	_, canEdit, err := a.grantOf(ctx, p, userID)
	return canEdit, err
}

// Authorize loads the page and checks userID may perform action on it.
// It returns page.ErrPageNotFound or ErrForbidden on denial, and the caller's
// edit flag alongside the page.
func (a *Authority) Authorize(ctx context.Context, pageID, userID uuid.UUID, action Action) (*page.Page, bool, error) {
	p, err := a.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("fetching page: %w", err)
	}

	canRead, canEdit, err := a.grantOf(ctx, p, userID)
	if err != nil {
		return nil, false, err
	}

	var allowed bool
	switch action {
	case ActionRead:
		allowed = canRead
	case ActionEdit:
		allowed = canEdit
	case ActionManage:
		allowed = p.IsCreator(userID)
	}
	if !allowed {
		return nil, false, ErrForbidden
	}
	return p, canEdit, nil
}

// RequireCreator returns the page if userID created it.
func (a *Authority) RequireCreator(ctx context.Context, pageID, userID uuid.UUID) (*page.Page, error) {
	p, _, err := a.Authorize(ctx, pageID, userID, ActionManage)
	return p, err
}

// AuthorizeList resolves the page owning listID and authorizes action on it.
// An unknown list is list.ErrListNotFound, never ErrForbidden.
func (a *Authority) AuthorizeList(ctx context.Context, listID, userID uuid.UUID, action Action) (*page.Page, error) {
	pageID, err := a.lists.PageIDForList(ctx, listID)
	if err != nil {
		return nil, err
	}
	p, _, err := a.Authorize(ctx, pageID, userID, action)
	return p, err
}

// Grant shares a page with target. The caller must already be authorized to
// manage the page.
func (a *Authority) Grant(ctx context.Context, pageID, target uuid.UUID, canEdit bool, grantedBy uuid.UUID) (*WithUser, error) {
	p, err := a.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, page.ErrPageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	if p.IsCreator(target) {
		return nil, ErrCannotGrantCreator
	}

	if _, err := a.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching grantee: %w", err)
	}

	if _, err := a.perms.Find(ctx, pageID, target); err == nil {
		return nil, ErrPermissionExists
	} else if !errors.Is(err, ErrPermissionNotFound) {
		return nil, fmt.Errorf("checking existing permission: %w", err)
	}

	perm := &Permission{
		PageID:    pageID,
		UserID:    target,
		CanEdit:   canEdit,
		GrantedBy: grantedBy,
	}
	if err := a.perms.Create(ctx, perm); err != nil {
		switch {
		case errors.Is(err, ErrPermissionExists):
			return nil, err
		case errors.Is(err, ErrUnknownReference):
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("creating permission: %w", err)
	}

	return a.perms.GetWithUser(ctx, pageID, perm.ID)
}

// Update changes the edit flag of a permission on pageID.
func (a *Authority) Update(ctx context.Context, pageID, permissionID uuid.UUID, canEdit bool) (*WithUser, error) {
	if _, err := a.perms.UpdateCanEdit(ctx, pageID, permissionID, canEdit); err != nil {
		return nil, err
	}
	return a.perms.GetWithUser(ctx, pageID, permissionID)
}

// Revoke deletes a permission on pageID. Revoking a missing permission succeeds.
func (a *Authority) Revoke(ctx context.Context, pageID, permissionID uuid.UUID) error {
	return a.perms.Delete(ctx, pageID, permissionID)
}

// ListPermissions returns the sharing list of a page.
func (a *Authority) ListPermissions(ctx context.Context, pageID uuid.UUID) ([]WithUser, error) {
	return a.perms.ListByPage(ctx, pageID)
}

// ListForUser returns the pages userID created, newest first, followed by
// the pages shared with them.
func (a *Authority) ListForUser(ctx context.Context, userID uuid.UUID) ([]PageWithRole, error) {
	created, err := a.pages.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing created pages: %w", err)
	}
	shared, err := a.perms.ListSharedWithUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing shared pages: %w", err)
	}

	out := make([]PageWithRole, 0, len(created)+len(shared))
	for _, p := range created {
		out = append(out, PageWithRole{Page: p, Role: RoleCreator, CanEdit: true})
	}
	for _, s := range shared {
		out = append(out, PageWithRole{Page: s.Page, Role: RoleShared, CanEdit: s.CanEdit})
	}
	return out, nil
}
