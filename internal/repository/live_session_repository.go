package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// LiveSessionRepository handles live session data access.
type LiveSessionRepository struct {
	pool *pgxpool.Pool
}

// NewLiveSessionRepository creates a new LiveSessionRepository.
func NewLiveSessionRepository(pool *pgxpool.Pool) *LiveSessionRepository {
	return &LiveSessionRepository{pool: pool}
}

const sessionColumns = `id, class_id, room_name, starts_at, ends_at, created_at`

func scanSession(row pgx.Row) (*model.LiveSession, error) {
	s := &model.LiveSession{}
	if err := row.Scan(&s.ID, &s.ClassID, &s.RoomName, &s.StartsAt, &s.EndsAt, &s.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// GetByID retrieves a session by ID.
func (r *LiveSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LiveSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM live_sessions WHERE id = $1`, id))
}

// GetByRoomName retrieves a session by its unique room name.
func (r *LiveSessionRepository) GetByRoomName(ctx context.Context, roomName string) (*model.LiveSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM live_sessions WHERE room_name = $1`, roomName))
}

// Create inserts a new session.
func (r *LiveSessionRepository) Create(ctx context.Context, s *model.LiveSession) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO live_sessions (class_id, room_name, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.ClassID, s.RoomName, s.StartsAt, s.EndsAt,
	).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

// ListByClass returns a class's sessions, latest start first.
func (r *LiveSessionRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]model.LiveSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM live_sessions
		 WHERE class_id = $1
		 ORDER BY starts_at DESC`, classID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.LiveSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
