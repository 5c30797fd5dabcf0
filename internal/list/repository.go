package list

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrListNotFound is returned when a list record is not found.
var ErrListNotFound = errors.New("list not found")

// ErrItemNotFound is returned when an item record is not found.
var ErrItemNotFound = errors.New("item not found")

// Repository provides operations on the lists and list_items tables.
// Lists and items come back ordered by position, then creation time.
// A nil position on create appends after the current last sibling.
type Repository interface {
	CreateList(ctx context.Context, l *List, position *int) error
	GetList(ctx context.Context, id uuid.UUID) (*List, error)
	ListsByPage(ctx context.Context, pageID uuid.UUID) ([]List, error)
	UpdateList(ctx context.Context, l *List) error
	DeleteList(ctx context.Context, id uuid.UUID) error
	PageIDForList(ctx context.Context, listID uuid.UUID) (uuid.UUID, error)

	CreateItem(ctx context.Context, it *Item, position *int) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ItemsByList(ctx context.Context, listID uuid.UUID) ([]Item, error)
	ItemsByPage(ctx context.Context, pageID uuid.UUID) ([]Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// Assemble groups items under their lists, keeping both orders.
func Assemble(lists []List, items []Item) []WithItems {
	byList := make(map[uuid.UUID][]Item, len(lists))
	for _, it := range items {
		byList[it.ListID] = append(byList[it.ListID], it)
	}
	out := make([]WithItems, 0, len(lists))
	for _, l := range lists {
		its := byList[l.ID]
		if its == nil {
			its = []Item{}
		}
		out = append(out, WithItems{List: l, Items: its})
	}
	return out
}
