package repofake

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
)

// SessionRepo is the in-memory live session store.
type SessionRepo struct {
	db *DB
}

func (r *SessionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.LiveSession, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	s, ok := r.db.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) GetByRoomName(ctx context.Context, roomName string) (*model.LiveSession, error) {
	r.db.lock.RLock()
	id, ok := r.db.sessionsByRoom[roomName]
	r.db.lock.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SessionRepo) Create(_ context.Context, s *model.LiveSession) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	if _, ok := r.db.classes[s.ClassID]; !ok {
		return repository.ErrNotFound
	}
	if _, taken := r.db.sessionsByRoom[s.RoomName]; taken {
		return repository.ErrDuplicate
	}
	s.ID = uuid.New()
	s.CreatedAt = r.db.now()

	cp := *s
	r.db.sessions[s.ID] = &cp
	r.db.sessionsByRoom[s.RoomName] = s.ID
	return nil
}

func (r *SessionRepo) ListByClass(_ context.Context, classID uuid.UUID) ([]model.LiveSession, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	var out []model.LiveSession
	for _, s := range r.db.sessions {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b model.LiveSession) int {
		return b.StartsAt.Compare(a.StartsAt)
	})
	return out, nil
}
