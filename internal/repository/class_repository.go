package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// classSelect loads a class with its enrolled student ids and owner summary.
const classSelect = `
	SELECT c.id, c.title, c.code, c.teacher_id, c.created_at, c.updated_at,
	       t.name, t.email,
	       COALESCE(array_agg(cs.student_id::text) FILTER (WHERE cs.student_id IS NOT NULL), '{}')
	FROM classes c
	JOIN users t ON t.id = c.teacher_id
	LEFT JOIN class_students cs ON cs.class_id = c.id`

func scanClass(row pgx.Row) (*model.Class, error) {
	c := &model.Class{Teacher: &model.TeacherSummary{}}
	var students []string
	err := row.Scan(&c.ID, &c.Title, &c.Code, &c.TeacherID, &c.CreatedAt, &c.UpdatedAt,
		&c.Teacher.Name, &c.Teacher.Email, &students)
	if err != nil {
		return nil, translate(err)
	}
	c.Teacher.ID = c.TeacherID
	c.StudentIDs = make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("class %s student id: %w", c.ID, err)
		}
		c.StudentIDs = append(c.StudentIDs, id)
	}
	return c, nil
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx,
		classSelect+` WHERE c.id = $1 GROUP BY c.id, t.id`, id))
}

// GetByCode retrieves a class by its join code.
func (r *ClassRepository) GetByCode(ctx context.Context, code string) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx,
		classSelect+` WHERE c.code = $1 GROUP BY c.id, t.id`, code))
}

// CodeExists reports whether a join code is already taken.
func (r *ClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// ListForUser returns the classes a teacher owns or a student is enrolled in,
// newest first.
func (r *ClassRepository) ListForUser(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Class, error) {
	var filter string
	switch role {
	case model.RoleTeacher:
		filter = ` WHERE c.teacher_id = $1`
	case model.RoleStudent:
		filter = ` WHERE EXISTS (SELECT 1 FROM class_students m WHERE m.class_id = c.id AND m.student_id = $1)`
	default:
		return nil, fmt.Errorf("list classes: unsupported role %d", role)
	}

	rows, err := r.pool.Query(ctx,
		classSelect+filter+` GROUP BY c.id, t.id ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

// Create inserts a new class. A taken code yields ErrDuplicate.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (title, code, teacher_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Code, c.TeacherID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

// AddStudent enrols a student. Enrolling twice is a no-op.
func (r *ClassRepository) AddStudent(ctx context.Context, classID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO class_students (class_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (class_id, student_id) DO NOTHING`,
		classID, studentID,
	)
	return translate(err)
}
