package page

import (
	"time"

	"github.com/google/uuid"
)

// Page represents a row in the pages table. PublicSlug, when set, exposes
// the page read-only without authentication.
type Page struct {
	ID          uuid.UUID
	Title       string
	Description *string
	CreatorID   uuid.UUID
	PublicSlug  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCreator reports whether userID created the page.
func (p *Page) IsCreator(userID uuid.UUID) bool {
	return p.CreatorID == userID
}
