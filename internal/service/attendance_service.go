package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// AttendanceService records join time and accrues watched duration.
type AttendanceService struct {
	guard *Guard
	store AttendanceStore
	now   func() time.Time
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(guard *Guard, store AttendanceStore) *AttendanceService {
	return &AttendanceService{guard: guard, store: store, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Track records a contact from the caller in a session. The first contact
// creates the record (created=true); later contacts accrue the seconds since
// the previous one. An identity whose token has expired is rejected even if
// it was valid when the connection opened.
func (s *AttendanceService) Track(ctx context.Context, id Identity, sessionID uuid.UUID) (*model.Attendance, bool, error) {
	if err := s.guard.RequireLive(id); err != nil {
		return nil, false, err
	}
	if _, err := s.guard.AuthorizeSession(ctx, id, sessionID); err != nil {
		return nil, false, err
	}

	a, created, err := s.store.Upsert(ctx, sessionID, id.UserID,
		func() model.Attendance {
			now := s.now()
			return model.Attendance{JoinedAt: now, LastSeenAt: now}
		},
		func(a *model.Attendance) { Accrue(a, s.now()) },
	)
	if err != nil {
		return nil, false, fmt.Errorf("track attendance: %w", err)
	}
	return a, created, nil
}

// Accrue advances a to now. The delta is rounded half up to whole seconds
// and clamped at zero.
func Accrue(a *model.Attendance, now time.Time) {
	delta := int64((now.Sub(a.LastSeenAt) + time.Second/2) / time.Second)
	if delta > 0 {
		a.DurationSec += delta
	}
	// Held back on a regressed clock: moving it to now would credit the
	// same interval a second time once the clock recovers.
	if now.After(a.LastSeenAt) {
		a.LastSeenAt = now
	}
}
