package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassService_CreateJoinList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher, student, class, session := f.classroom(t)

	assert.Len(t, class.Code, 6)
	assert.Equal(t, "Informatika Dasar", class.Title)

	teacherView, err := f.classes.List(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, teacherView, 1)
	assert.True(t, teacherView[0].IsTeacher)
	assert.Equal(t, 1, teacherView[0].StudentsCount)
	require.Len(t, teacherView[0].Sessions, 1)
	assert.Equal(t, session.RoomName, teacherView[0].Sessions[0].RoomName)
	require.NotNil(t, teacherView[0].Teacher)
	assert.Equal(t, teacher.Email, teacherView[0].Teacher.Email)

	studentView, err := f.classes.List(ctx, student)
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.False(t, studentView[0].IsTeacher)
	assert.Equal(t, model.RoleStudent, studentView[0].Role)
}

func TestClassService_JoinIsIdempotentAndNormalizesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, student, class, _ := f.classroom(t)

	joined, err := f.classes.Join(ctx, student, "  "+strings.ToLower(class.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, class.ID, joined.ID)
	assert.Len(t, joined.StudentIDs, 1)
}

func TestClassService_JoinErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher, _, class, _ := f.classroom(t)
	other := f.user(t, "other@example.com", model.RoleStudent)

	_, err := f.classes.Join(ctx, other, "ZZZZZZ")
	assert.ErrorIs(t, err, service.ErrClassNotFound)

	_, err = f.classes.Join(ctx, teacher, class.Code)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestClassService_CreateRequiresTeacher(t *testing.T) {
	f := newFixture(t)
	student := f.user(t, "s@example.com", model.RoleStudent)

	_, err := f.classes.Create(context.Background(), student, "Matematika")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestClassService_CodeRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "t@example.com", model.RoleTeacher)

	codes := []string{"ABC123", "ABC123", "ABC123", "XYZ789"}
	next := 0
	f.classes.WithCodeGenerator(func() string {
		c := codes[next%len(codes)]
		next++
		return c
	})

	first, err := f.classes.Create(ctx, teacher, "Satu")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", first.Code)

	second, err := f.classes.Create(ctx, teacher, "Dua")
	require.NoError(t, err)
	assert.Equal(t, "XYZ789", second.Code)
	assert.Equal(t, 4, next)
}

func TestClassService_CodeSpaceExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "t@example.com", model.RoleTeacher)

	calls := 0
	f.classes.WithCodeGenerator(func() string { calls++; return "SAME01" })

	_, err := f.classes.Create(ctx, teacher, "Satu")
	require.NoError(t, err)

	calls = 0
	_, err = f.classes.Create(ctx, teacher, "Dua")
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, service.MaxCodeAttempts, calls)
}

func TestLiveSessionService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher, student, class, _ := f.classroom(t)

	start := f.clock.Now().Add(time.Hour)
	end := start.Add(-time.Minute)
	_, err := f.sessions.Create(ctx, teacher, class.ID, &start, &end)
	var fe *service.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "ends_at", fe.Field)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.sessions.Create(ctx, student, class.ID, nil, nil)
	assert.ErrorIs(t, err, service.ErrForbidden)

	otherTeacher := f.user(t, "other-teacher@example.com", model.RoleTeacher)
	_, err = f.sessions.Create(ctx, otherTeacher, class.ID, nil, nil)
	assert.ErrorIs(t, err, service.ErrForbidden)

	end = start.Add(90 * time.Minute)
	later, err := f.sessions.Create(ctx, teacher, class.ID, &start, &end)
	require.NoError(t, err)

	list, err := f.sessions.List(ctx, student, class.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, later.ID, list[0].ID)
}
