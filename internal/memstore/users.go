package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/user"
)

type userRepo struct{ s *Store }

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u := r.s.findUserLocked(id); u != nil {
		c := *u
		return &c, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) FindByTwitchID(_ context.Context, twitchID string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.TwitchID == twitchID {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) Create(_ context.Context, info user.ProviderInfo) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.TwitchID == info.TwitchID {
			return nil, user.ErrDuplicateTwitchID
		}
	}
	now := r.s.tick()
	u := &user.User{
		ID:          uuid.New(),
		TwitchID:    info.TwitchID,
		Username:    info.Username,
		DisplayName: info.DisplayName,
		AvatarURL:   info.AvatarURL,
		Email:       info.Email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.users = append(r.s.users, u)
	c := *u
	return &c, nil
}

func (r *userRepo) UpdateProviderInfo(_ context.Context, info user.ProviderInfo) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.TwitchID == info.TwitchID {
			u.Username = info.Username
			u.DisplayName = info.DisplayName
			u.AvatarURL = info.AvatarURL
			u.Email = info.Email
			u.UpdatedAt = r.s.tick()
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) Search(_ context.Context, query string, excludeID uuid.UUID) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(query)
	out := []user.User{}
	for _, u := range r.s.users {
		if u.ID == excludeID {
			continue
		}
		match := strings.Contains(strings.ToLower(u.Username), q)
		if !match && u.DisplayName != nil {
			match = strings.Contains(strings.ToLower(*u.DisplayName), q)
		}
		if match {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > user.SearchLimit {
		out = out[:user.SearchLimit]
	}
	return out, nil
}
