package repofake

import (
	"context"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
)

// AttendanceRepo is the in-memory attendance store.
type AttendanceRepo struct {
	db *DB
}

func (r *AttendanceRepo) Get(_ context.Context, sessionID, userID uuid.UUID) (*model.Attendance, error) {
	r.db.lock.RLock()
	defer r.db.lock.RUnlock()

	a, ok := r.db.attendance[attendanceKey{sessionID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// Upsert holds a per-pair lock for the whole read-modify-write, so different
// pairs proceed in parallel.
func (r *AttendanceRepo) Upsert(
	ctx context.Context,
	sessionID, userID uuid.UUID,
	init func() model.Attendance,
	update func(*model.Attendance),
) (*model.Attendance, bool, error) {
	key := attendanceKey{sessionID, userID}
	unlock := r.db.keyLocks.Lock(key)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.db.lock.RLock()
	current, ok := r.db.attendance[key]
	r.db.lock.RUnlock()

	if !ok {
		fresh := init()
		fresh.ID = uuid.New()
		fresh.SessionID, fresh.UserID = sessionID, userID

		cp := fresh
		r.db.lock.Lock()
		r.db.attendance[key] = &cp
		r.db.lock.Unlock()
		return &fresh, true, nil
	}

	next := *current
	update(&next)

	stored := next
	r.db.lock.Lock()
	r.db.attendance[key] = &stored
	r.db.lock.Unlock()
	return &next, false, nil
}
