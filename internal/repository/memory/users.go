package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/types/user"
)

type UserRepo struct{ store *Store }

func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperr.ErrConflict
		}
	}
	copied := *u
	r.store.users[u.ID] = &copied
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[u.ID]; !ok {
		return apperr.ErrNotFound
	}
	copied := *u
	r.store.users[u.ID] = &copied
	return nil
}

type SessionRepo struct{ store *Store }

func (s *Store) Sessions() *SessionRepo { return &SessionRepo{store: s} }

func (r *SessionRepo) Create(ctx context.Context, sess *user.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *sess
	r.store.sessions[sess.TokenID] = &copied
	return nil
}

func (r *SessionRepo) GetByTokenID(ctx context.Context, tokenID string) (*user.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sess, ok := r.store.sessions[tokenID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, tokenID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.sessions[tokenID]
	if !ok {
		return apperr.ErrNotFound
	}
	sess.RevokedAt = &at
	return nil
}
