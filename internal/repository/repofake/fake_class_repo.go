package repofake

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
)

// ClassRepo is the in-memory class store.
type ClassRepo struct {
	db *DB
}

// snapshot copies a class and attaches its owner summary. Caller holds the read lock.
func (r *ClassRepo) snapshot(c *model.Class) *model.Class {
	cp := *c
	cp.StudentIDs = slices.Clone(c.StudentIDs)
	if t, ok := r.db.users[c.TeacherID]; ok {
		cp.Teacher = &model.TeacherSummary{ID: t.ID, Name: t.Name, Email: t.Email}
	}
	return &cp
}

func (r *ClassRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	c, ok := r.db.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.snapshot(c), nil
}

func (r *ClassRepo) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	r.db.lock.RLock()
	id, ok := r.db.classesByCode[code]
	r.db.lock.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *ClassRepo) CodeExists(_ context.Context, code string) (bool, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	_, ok := r.db.classesByCode[code]
	return ok, nil
}

func (r *ClassRepo) ListForUser(_ context.Context, userID uuid.UUID, role model.Role) ([]model.Class, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	var out []model.Class
	for _, c := range r.db.classes {
		var match bool
		switch role {
		case model.RoleTeacher:
			match = c.TeacherID == userID
		case model.RoleStudent:
			match = c.HasStudent(userID)
		default:
			return nil, fmt.Errorf("list classes: unsupported role %d", role)
		}
		if match {
			out = append(out, *r.snapshot(c))
		}
	}
	slices.SortFunc(out, func(a, b model.Class) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *ClassRepo) Create(_ context.Context, c *model.Class) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	if _, taken := r.db.classesByCode[c.Code]; taken {
		return repository.ErrDuplicate
	}
	now := r.db.now()
	c.ID = uuid.New()
	c.CreatedAt, c.UpdatedAt = now, now

	cp := *c
	cp.StudentIDs = slices.Clone(c.StudentIDs)
	cp.Teacher = nil
	r.db.classes[c.ID] = &cp
	r.db.classesByCode[c.Code] = c.ID
	return nil
}

func (r *ClassRepo) AddStudent(_ context.Context, classID, studentID uuid.UUID) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	c, ok := r.db.classes[classID]
	if !ok {
		return repository.ErrNotFound
	}
	if !c.HasStudent(studentID) {
		c.StudentIDs = append(c.StudentIDs, studentID)
	}
	return nil
}
