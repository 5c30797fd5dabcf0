package permission

import (
	"time"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/user"
)

// Permission represents a row in the page_permissions table. There is at
// most one row per (page, user) pair, and never one for the page creator.
type Permission struct {
	ID        uuid.UUID
	PageID    uuid.UUID
	UserID    uuid.UUID
	CanEdit   bool
	GrantedBy uuid.UUID
	CreatedAt time.Time
}

// WithUser is a permission joined with the grantee.
type WithUser struct {
	Permission
	User user.User
}

// SharedPage is a page reached through a permission row.
type SharedPage struct {
	Page    page.Page
	CanEdit bool
}

// Role describes how a user reaches a page.
type Role string

const (
	RoleCreator Role = "creator"
	RoleShared  Role = "shared"
)

// PageWithRole is a page together with the caller's role on it.
type PageWithRole struct {
	Page    page.Page
	Role    Role
	CanEdit bool
}

// Action is what a caller wants to do with a page or something on it.
type Action int

const (
	// ActionRead needs any access: creator, editor or viewer.
	ActionRead Action = iota
	// ActionEdit needs creator or a grant with can_edit.
	ActionEdit
	// ActionManage is creator only: delete, public slug, sharing.
	ActionManage
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionEdit:
		return "edit"
	case ActionManage:
		return "manage"
	default:
		return "unknown"
	}
}
