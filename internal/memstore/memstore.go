// Package memstore is an in-memory implementation of every repository,
// with the same ordering and uniqueness rules as the Postgres schema. It
// backs handler and authorization tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/list"
	"github.com/sharedlists/sharedlists/internal/page"
	"github.com/sharedlists/sharedlists/internal/permission"
	"github.com/sharedlists/sharedlists/internal/user"
)

// Store holds all tables behind one lock.
type Store struct {
	mu    sync.Mutex
	clock time.Time

	users []*user.User
	keys  []*apikey.APIKey
	pages []*page.Page
	perms []*permission.Permission
	lists []*list.List
	items []*list.Item
}

// New creates an empty Store.
func New() *Store {
	return &Store{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// tick returns a strictly increasing timestamp so creation order is total.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// Users returns the user.Repository view.
func (s *Store) Users() user.Repository { return &userRepo{s} }

// APIKeys returns the apikey.Repository view.
func (s *Store) APIKeys() apikey.Repository { return &keyRepo{s} }

// Pages returns the page.Repository view.
func (s *Store) Pages() page.Repository { return &pageRepo{s} }

// Permissions returns the permission.Repository view.
func (s *Store) Permissions() permission.Repository { return &permRepo{s} }

// Lists returns the list.Repository view.
func (s *Store) Lists() list.Repository { return &listRepo{s} }

// DeleteUser removes a user and everything that references it.
func (s *Store) DeleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = filter(s.users, func(u *user.User) bool { return u.ID != id })
	s.keys = filter(s.keys, func(k *apikey.APIKey) bool { return k.UserID != id })
	s.perms = filter(s.perms, func(p *permission.Permission) bool { return p.UserID != id && p.GrantedBy != id })
	for _, p := range s.pages {
		if p.CreatorID == id {
			s.deletePageLocked(p.ID)
		}
	}
}

func (s *Store) deletePageLocked(id uuid.UUID) {
	s.pages = filter(s.pages, func(p *page.Page) bool { return p.ID != id })
	s.perms = filter(s.perms, func(p *permission.Permission) bool { return p.PageID != id })
	for _, l := range s.lists {
		if l.PageID == id {
			s.deleteListLocked(l.ID)
		}
	}
}

func (s *Store) deleteListLocked(id uuid.UUID) {
	s.lists = filter(s.lists, func(l *list.List) bool { return l.ID != id })
	s.items = filter(s.items, func(it *list.Item) bool { return it.ListID != id })
}

func (s *Store) findUserLocked(id uuid.UUID) *user.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) findPageLocked(id uuid.UUID) *page.Page {
	for _, p := range s.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) findListLocked(id uuid.UUID) *list.List {
	for _, l := range s.lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
