package list

import (
	"time"

	"github.com/google/uuid"
)

// List represents a row in the lists table. Lists have no access control of
// their own; they inherit their page's.
type List struct {
	ID        uuid.UUID
	PageID    uuid.UUID
	Title     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item represents a row in the list_items table.
type Item struct {
	ID        uuid.UUID
	ListID    uuid.UUID
	Content   string
	Checked   bool
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithItems is a list together with its ordered items.
type WithItems struct {
	List
	Items []Item
}
