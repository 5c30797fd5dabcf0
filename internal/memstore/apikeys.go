package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sharedlists/sharedlists/internal/apikey"
)

type keyRepo struct{ s *Store }

func copyKey(k *apikey.APIKey) *apikey.APIKey {
	c := *k
	c.Scopes = append([]string{}, k.Scopes...)
	return &c
}

func (r *keyRepo) Create(_ context.Context, k *apikey.APIKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.keys {
		if existing.TokenHash == k.TokenHash {
			return apikey.ErrDuplicateTokenHash
		}
	}
	k.ID = uuid.New()
	k.CreatedAt = r.s.tick()
	k.Revoked = false
	r.s.keys = append(r.s.keys, copyKey(k))
	return nil
}

func (r *keyRepo) FindActiveByTokenHash(_ context.Context, tokenHash string) (*apikey.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.keys {
		if k.TokenHash == tokenHash && !k.Revoked {
			return copyKey(k), nil
		}
	}
	return nil, apikey.ErrKeyNotFound
}

func (r *keyRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]apikey.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []apikey.APIKey{}
	for _, k := range r.s.keys {
		if k.UserID == userID {
			out = append(out, *copyKey(k))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *keyRepo) Revoke(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.keys {
		if k.ID == id && k.UserID == userID && !k.Revoked {
			k.Revoked = true
			return true, nil
		}
	}
	return false, nil
}

func (r *keyRepo) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.keys)
	r.s.keys = filter(r.s.keys, func(k *apikey.APIKey) bool { return !(k.ID == id && k.UserID == userID) })
	return len(r.s.keys) < before, nil
}
