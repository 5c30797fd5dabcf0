package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/permission"
)

type permRepo struct{ s *Store }

func (r *permRepo) Find(_ context.Context, pageID, userID uuid.UUID) (*permission.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.PageID == pageID && p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, permission.ErrPermissionNotFound
}

func (r *permRepo) Create(_ context.Context, p *permission.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findPageLocked(p.PageID) == nil || r.s.findUserLocked(p.UserID) == nil {
		return permission.ErrUnknownReference
	}
	for _, existing := range r.s.perms {
		if existing.PageID == p.PageID && existing.UserID == p.UserID {
			return permission.ErrPermissionExists
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = r.s.tick()
	c := *p
	r.s.perms = append(r.s.perms, &c)
	return nil
}

func (r *permRepo) UpdateCanEdit(_ context.Context, pageID, id uuid.UUID, canEdit bool) (*permission.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.ID == id && p.PageID == pageID {
			p.CanEdit = canEdit
			c := *p
			return &c, nil
		}
	}
	return nil, permission.ErrPermissionNotFound
}

func (r *permRepo) Delete(_ context.Context, pageID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.perms = filter(r.s.perms, func(p *permission.Permission) bool { return !(p.ID == id && p.PageID == pageID) })
	return nil
}

func (r *permRepo) withUserLocked(p *permission.Permission) (*permission.WithUser, bool) {
	u := r.s.findUserLocked(p.UserID)
	if u == nil {
		return nil, false
	}
	return &permission.WithUser{Permission: *p, User: *u}, true
}

func (r *permRepo) GetWithUser(_ context.Context, pageID, id uuid.UUID) (*permission.WithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.ID == id && p.PageID == pageID {
			if w, ok := r.withUserLocked(p); ok {
				return w, nil
			}
		}
	}
	return nil, permission.ErrPermissionNotFound
}

func (r *permRepo) ListByPage(_ context.Context, pageID uuid.UUID) ([]permission.WithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []permission.WithUser{}
	for _, p := range r.s.perms {
		if p.PageID != pageID {
			continue
		}
		if w, ok := r.withUserLocked(p); ok {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *permRepo) ListSharedWithUser(_ context.Context, userID uuid.UUID) ([]permission.SharedPage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type sharedRow struct {
		shared permission.SharedPage
		at     int64
	}
	var rows []sharedRow
	for _, p := range r.s.perms {
		if p.UserID != userID {
			continue
		}
		if pg := r.s.findPageLocked(p.PageID); pg != nil {
			rows = append(rows, sharedRow{permission.SharedPage{Page: *pg, CanEdit: p.CanEdit}, p.CreatedAt.UnixNano()})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at > rows[j].at })
	out := make([]permission.SharedPage, 0, len(rows))
	for _, sr := range rows {
		out = append(out, sr.shared)
	}
	return out, nil
}
