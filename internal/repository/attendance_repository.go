package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, session_id, user_id, joined_at, last_seen_at, duration_sec`

func scanAttendance(row pgx.Row) (*model.Attendance, error) {
	a := &model.Attendance{}
	if err := row.Scan(&a.ID, &a.SessionID, &a.UserID, &a.JoinedAt, &a.LastSeenAt, &a.DurationSec); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// Get retrieves the record for a (session, user) pair.
func (r *AttendanceRepository) Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.Attendance, error) {
	return scanAttendance(r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendances WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID))
}

// Upsert runs a read-modify-write on the (sessionID, userID) row under a row
// lock. If no row exists, init's value is inserted and created is true.
// Otherwise update mutates the locked row, which is then written back.
// Concurrent callers on the same pair are serialized; other pairs are not
// blocked.
func (r *AttendanceRepository) Upsert(
	ctx context.Context,
	sessionID, userID uuid.UUID,
	init func() model.Attendance,
	update func(*model.Attendance),
) (*model.Attendance, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin attendance tx: %w", err)
	}
	defer tx.Rollback(ctx)

	lockRow := func() (*model.Attendance, error) {
		return scanAttendance(tx.QueryRow(ctx,
			`SELECT `+attendanceColumns+` FROM attendances
			 WHERE session_id = $1 AND user_id = $2
			 FOR UPDATE`, sessionID, userID))
	}

	existing, err := lockRow()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lock attendance: %w", err)
	}

	if existing == nil {
		fresh := init()
		fresh.SessionID, fresh.UserID = sessionID, userID
		err = tx.QueryRow(ctx,
			`INSERT INTO attendances (session_id, user_id, joined_at, last_seen_at, duration_sec)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (session_id, user_id) DO NOTHING
			 RETURNING id`,
			fresh.SessionID, fresh.UserID, fresh.JoinedAt, fresh.LastSeenAt, fresh.DurationSec,
		).Scan(&fresh.ID)
		switch {
		case err == nil:
			if err := tx.Commit(ctx); err != nil {
				return nil, false, fmt.Errorf("commit attendance insert: %w", err)
			}
			return &fresh, true, nil
		case errors.Is(err, pgx.ErrNoRows):
			// A concurrent first contact won the insert; continue as an update.
			existing, err = lockRow()
			if err != nil {
				return nil, false, fmt.Errorf("lock attendance after conflict: %w", err)
			}
		default:
			return nil, false, fmt.Errorf("insert attendance: %w", translate(err))
		}
	}

	update(existing)
	_, err = tx.Exec(ctx,
		`UPDATE attendances SET last_seen_at = $1, duration_sec = $2 WHERE id = $3`,
		existing.LastSeenAt, existing.DurationSec, existing.ID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("update attendance: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit attendance update: %w", err)
	}
	return existing, false, nil
}
