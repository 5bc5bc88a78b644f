package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/idgen"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/rs/zerolog"
)

// LiveSessionService schedules and lists live sessions.
type LiveSessionService struct {
	guard       *Guard
	sessions    SessionStore
	newRoomName func(time.Time) string
	now         func() time.Time
	log         zerolog.Logger
}

// NewLiveSessionService creates a new LiveSessionService.
func NewLiveSessionService(guard *Guard, sessions SessionStore, log zerolog.Logger) *LiveSessionService {
	return &LiveSessionService{
		guard:       guard,
		sessions:    sessions,
		newRoomName: idgen.RoomName,
		now:         time.Now,
		log:         log.With().Str("component", "live_session").Logger(),
	}
}

// WithClock overrides the time source. Used by tests.
func (s *LiveSessionService) WithClock(now func() time.Time) *LiveSessionService {
	s.now = now
	return s
}

// List returns a class's sessions, latest start first.
func (s *LiveSessionService) List(ctx context.Context, id Identity, classID uuid.UUID) ([]model.LiveSession, error) {
	if _, err := s.guard.AuthorizeClass(ctx, id, classID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Create schedules a session for a class the calling teacher owns. StartsAt
// defaults to now.
func (s *LiveSessionService) Create(ctx context.Context, id Identity, classID uuid.UUID, startsAt, endsAt *time.Time) (*model.LiveSession, error) {
	if err := RequireRole(id, model.RoleTeacher); err != nil {
		return nil, err
	}
	if _, err := s.guard.AuthorizeClass(ctx, id, classID); err != nil {
		return nil, err
	}

	now := s.now()
	start := now
	if startsAt != nil {
		start = *startsAt
	}
	if endsAt != nil && endsAt.Before(start) {
		return nil, &FieldError{Field: "ends_at", Message: "must not be before starts_at"}
	}

	session := &model.LiveSession{
		ClassID:  classID,
		RoomName: s.newRoomName(now),
		StartsAt: start,
		EndsAt:   endsAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("room", session.RoomName).
		Msg("Live session scheduled")
	return session, nil
}
