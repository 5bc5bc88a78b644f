package model

import (
	"time"

	"github.com/google/uuid"
)

// Class is a teacher-owned group with an enrolled student set and a
// shareable join code.
type Class struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Code       string      `json:"code"`
	TeacherID  uuid.UUID   `json:"teacher_id"`
	StudentIDs []uuid.UUID `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Teacher is populated by list queries only.
	Teacher *TeacherSummary `json:"-"`
}

// HasStudent reports whether userID is in the enrolled set.
func (c *Class) HasStudent(userID uuid.UUID) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TeacherSummary is the owner block embedded in class listings.
type TeacherSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ClassSummary is the caller-relative view of a class.
type ClassSummary struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Code          string           `json:"code"`
	Role          Role             `json:"role"`
	TeacherID     uuid.UUID        `json:"teacher_id"`
	Teacher       *TeacherSummary  `json:"teacher"`
	StudentsCount int              `json:"students_count"`
	Sessions      []SessionSummary `json:"sessions"`
	IsTeacher     bool             `json:"is_teacher"`
}

// CreateClassRequest is the payload a teacher sends to open a class.
type CreateClassRequest struct {
	Title string `json:"title" binding:"required,min=1,max=120"`
}

// JoinClassRequest is the payload a student sends to enrol with a code.
type JoinClassRequest struct {
	Code string `json:"code" binding:"required,classcode"`
}
