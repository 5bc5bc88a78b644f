package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// Storage contracts. The pgx repositories and the repofake stores both satisfy
// them and report absence with repository.ErrNotFound.

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type ClassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	GetByCode(ctx context.Context, code string) (*model.Class, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	AddStudent(ctx context.Context, classID, studentID uuid.UUID) error
}

type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error)
	GetByRoomName(ctx context.Context, roomName string) (*model.LiveSession, error)
	Create(ctx context.Context, s *model.LiveSession) error
	ListByClass(ctx context.Context, classID uuid.UUID) ([]model.LiveSession, error)
}

// AttendanceStore must serialize Upsert calls for the same pair.
type AttendanceStore interface {
	Upsert(
		ctx context.Context,
		sessionID, userID uuid.UUID,
		init func() model.Attendance,
		update func(*model.Attendance),
	) (*model.Attendance, bool, error)
}
