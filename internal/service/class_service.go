package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelaslive/kelaslive-backend/internal/idgen"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/rs/zerolog"
)

// MaxCodeAttempts bounds class code generation before reporting a conflict.
const MaxCodeAttempts = 10

// ClassService manages classes and enrolment.
type ClassService struct {
	classes  ClassStore
	sessions SessionStore
	newCode  func() string
	log      zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classes ClassStore, sessions SessionStore, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes:  classes,
		sessions: sessions,
		newCode:  func() string { return idgen.ClassCode(idgen.DefaultClassCodeLength) },
		log:      log.With().Str("component", "class").Logger(),
	}
}

// WithCodeGenerator overrides the join code source. Used by tests.
func (s *ClassService) WithCodeGenerator(gen func() string) *ClassService {
	s.newCode = gen
	return s
}

// List returns the caller's classes with their sessions, newest first.
func (s *ClassService) List(ctx context.Context, id Identity) ([]model.ClassSummary, error) {
	classes, err := s.classes.ListForUser(ctx, id.UserID, id.Role)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	out := make([]model.ClassSummary, 0, len(classes))
	for i := range classes {
		c := &classes[i]
		sessions, err := s.sessions.ListByClass(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list sessions for class %s: %w", c.ID, err)
		}
		summaries := make([]model.SessionSummary, 0, len(sessions))
		for j := range sessions {
			summaries = append(summaries, sessions[j].Summary())
		}
		out = append(out, model.ClassSummary{
			ID:            c.ID,
			Title:         c.Title,
			Code:          c.Code,
			Role:          id.Role,
			TeacherID:     c.TeacherID,
			Teacher:       c.Teacher,
			StudentsCount: len(c.StudentIDs),
			Sessions:      summaries,
			IsTeacher:     c.TeacherID == id.UserID,
		})
	}
	return out, nil
}

// Create opens a class owned by the calling teacher with a fresh join code.
// Code generation is retried MaxCodeAttempts times before ErrCodeExhausted.
func (s *ClassService) Create(ctx context.Context, id Identity, title string) (*model.Class, error) {
	if err := RequireRole(id, model.RoleTeacher); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &FieldError{Field: "title", Message: "must not be blank"}
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code := s.newCode()
		taken, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check class code: %w", err)
		}
		if taken {
			continue
		}

		class := &model.Class{Title: title, Code: code, TeacherID: id.UserID}
		err = s.classes.Create(ctx, class)
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race for the same code.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create class: %w", err)
		}

		s.log.Info().
			Str("class_id", class.ID.String()).
			Str("code", class.Code).
			Int("attempt", attempt).
			Msg("Class created")
		return class, nil
	}

	s.log.Warn().Int("attempts", MaxCodeAttempts).Msg("Class code space exhausted")
	return nil, ErrCodeExhausted
}

// Join enrols the calling student using a join code. Joining twice is a no-op.
func (s *ClassService) Join(ctx context.Context, id Identity, code string) (*model.Class, error) {
	if err := RequireRole(id, model.RoleStudent); err != nil {
		return nil, err
	}

	class, err := s.classes.GetByCode(ctx, idgen.NormalizeClassCode(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("load class by code: %w", err)
	}
	if class.HasStudent(id.UserID) {
		return class, nil
	}

	if err := s.classes.AddStudent(ctx, class.ID, id.UserID); err != nil {
		return nil, fmt.Errorf("enrol student: %w", err)
	}
	class.StudentIDs = append(class.StudentIDs, id.UserID)

	s.log.Info().
		Str("class_id", class.ID.String()).
		Str("student_id", id.UserID.String()).
		Msg("Student joined class")
	return class, nil
}
