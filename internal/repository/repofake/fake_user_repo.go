package repofake

import (
	"context"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
)

// UserRepo is the in-memory user store.
type UserRepo struct {
	db *DB
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.db.lock.RLock()
	id, ok := r.db.usersByEmail[email]
	r.db.lock.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	if _, taken := r.db.usersByEmail[u.Email]; taken {
		return repository.ErrDuplicate
	}
	now := r.db.now()
	u.ID = uuid.New()
	u.CreatedAt, u.UpdatedAt = now, now

	cp := *u
	r.db.users[u.ID] = &cp
	r.db.usersByEmail[u.Email] = u.ID
	return nil
}
