package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/list"
)

type listRepo struct{ s *Store }

func sortLists(ls []list.List) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].Position != ls[j].Position {
			return ls[i].Position < ls[j].Position
		}
		return ls[i].CreatedAt.Before(ls[j].CreatedAt)
	})
}

func sortItems(its []list.Item) {
	sort.SliceStable(its, func(i, j int) bool {
		if its[i].Position != its[j].Position {
			return its[i].Position < its[j].Position
		}
		return its[i].CreatedAt.Before(its[j].CreatedAt)
	})
}

func (r *listRepo) CreateList(_ context.Context, l *list.List, position *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if position != nil {
		l.Position = *position
	} else {
		next := 0
		for _, existing := range r.s.lists {
			if existing.PageID == l.PageID && existing.Position+1 > next {
				next = existing.Position + 1
			}
		}
		l.Position = next
	}
	now := r.s.tick()
	l.ID = uuid.New()
	l.CreatedAt = now
	l.UpdatedAt = now
	c := *l
	r.s.lists = append(r.s.lists, &c)
	return nil
}

func (r *listRepo) GetList(_ context.Context, id uuid.UUID) (*list.List, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l := r.s.findListLocked(id); l != nil {
		c := *l
		return &c, nil
	}
	return nil, list.ErrListNotFound
}

func (r *listRepo) ListsByPage(_ context.Context, pageID uuid.UUID) ([]list.List, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []list.List{}
	for _, l := range r.s.lists {
		if l.PageID == pageID {
			out = append(out, *l)
		}
	}
	sortLists(out)
	return out, nil
}

func (r *listRepo) UpdateList(_ context.Context, l *list.List) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.findListLocked(l.ID)
	if stored == nil {
		return list.ErrListNotFound
	}
	stored.Title = l.Title
	stored.Position = l.Position
	stored.UpdatedAt = r.s.tick()
	l.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *listRepo) DeleteList(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findListLocked(id) == nil {
		return list.ErrListNotFound
	}
	r.s.deleteListLocked(id)
	return nil
}

func (r *listRepo) PageIDForList(_ context.Context, listID uuid.UUID) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l := r.s.findListLocked(listID); l != nil {
		return l.PageID, nil
	}
	return uuid.Nil, list.ErrListNotFound
}

func (r *listRepo) CreateItem(_ context.Context, it *list.Item, position *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if position != nil {
		it.Position = *position
	} else {
		next := 0
		for _, existing := range r.s.items {
			if existing.ListID == it.ListID && existing.Position+1 > next {
				next = existing.Position + 1
			}
		}
		it.Position = next
	}
	now := r.s.tick()
	it.ID = uuid.New()
	it.Checked = false
	it.CreatedAt = now
	it.UpdatedAt = now
	c := *it
	r.s.items = append(r.s.items, &c)
	return nil
}

func (r *listRepo) GetItem(_ context.Context, id uuid.UUID) (*list.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.ID == id {
			c := *it
			return &c, nil
		}
	}
	return nil, list.ErrItemNotFound
}

func (r *listRepo) ItemsByList(_ context.Context, listID uuid.UUID) ([]list.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []list.Item{}
	for _, it := range r.s.items {
		if it.ListID == listID {
			out = append(out, *it)
		}
	}
	sortItems(out)
	return out, nil
}

func (r *listRepo) ItemsByPage(_ context.Context, pageID uuid.UUID) ([]list.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []list.Item{}
	for _, it := range r.s.items {
		if l := r.s.findListLocked(it.ListID); l != nil && l.PageID == pageID {
			out = append(out, *it)
		}
	}
	sortItems(out)
	return out, nil
}

func (r *listRepo) UpdateItem(_ context.Context, it *list.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, stored := range r.s.items {
		if stored.ID == it.ID {
			stored.Content = it.Content
			stored.Checked = it.Checked
			stored.Position = it.Position
			stored.UpdatedAt = r.s.tick()
			it.UpdatedAt = stored.UpdatedAt
			return nil
		}
	}
	return list.ErrItemNotFound
}

func (r *listRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.items)
	r.s.items = filter(r.s.items, func(it *list.Item) bool { return it.ID != id })
	if len(r.s.items) == before {
		return list.ErrItemNotFound
	}
	return nil
}
