package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/page"
)

type pageRepo struct{ s *Store }

func (r *pageRepo) Create(_ context.Context, p *page.Page) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.tick()
	p.ID = uuid.New()
	p.PublicSlug = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	c := *p
	r.s.pages = append(r.s.pages, &c)
	return nil
}

func (r *pageRepo) GetByID(_ context.Context, id uuid.UUID) (*page.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p := r.s.findPageLocked(id); p != nil {
		c := *p
		return &c, nil
	}
	return nil, page.ErrPageNotFound
}

func (r *pageRepo) GetByPublicSlug(_ context.Context, slug string) (*page.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.pages {
		if p.PublicSlug != nil && *p.PublicSlug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, page.ErrPageNotFound
}

func (r *pageRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]page.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []page.Page{}
	for _, p := range r.s.pages {
		if p.CreatorID == creatorID {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *pageRepo) Update(_ context.Context, p *page.Page) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.findPageLocked(p.ID)
	if stored == nil {
		return page.ErrPageNotFound
	}
	stored.Title = p.Title
	stored.Description = p.Description
	stored.UpdatedAt = r.s.tick()
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *pageRepo) SetPublicSlug(_ context.Context, id uuid.UUID, slug *string) (*page.Page, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.findPageLocked(id)
	if stored == nil {
		return nil, page.ErrPageNotFound
	}
	if slug != nil {
		for _, p := range r.s.pages {
			if p.ID != id && p.PublicSlug != nil && *p.PublicSlug == *slug {
				return nil, page.ErrSlugTaken
			}
		}
		v := *slug
		stored.PublicSlug = &v
	} else {
		stored.PublicSlug = nil
	}
	stored.UpdatedAt = r.s.tick()
	c := *stored
	return &c, nil
}

func (r *pageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.findPageLocked(id) == nil {
		return page.ErrPageNotFound
	}
	r.s.deletePageLocked(id)
	return nil
}
