package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository/repofake"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-with-at-least-32-characters"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fixture wires every service on one in-memory database.
type fixture struct {
	db         *repofake.DB
	clock      *clock
	tokens     *service.TokenAuthority
	auth       *service.AuthService
	guard      *service.Guard
	classes    *service.ClassService
	sessions   *service.LiveSessionService
	attendance *service.AttendanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repofake.New()
	clk := newClock()
	log := zerolog.Nop()

	tokens := service.NewTokenAuthority(testSecret, 6*time.Hour).WithClock(clk.Now)
	guard := service.NewGuard(tokens, db.Classes(), db.Sessions())

	return &fixture{
		db:         db,
		clock:      clk,
		tokens:     tokens,
		auth:       service.NewAuthService(db.Users(), tokens, bcrypt.MinCost, log),
		guard:      guard,
		classes:    service.NewClassService(db.Classes(), db.Sessions(), log),
		sessions:   service.NewLiveSessionService(guard, db.Sessions(), log).WithClock(clk.Now),
		attendance: service.NewAttendanceService(guard, db.Attendance()).WithClock(clk.Now),
	}
}

func (f *fixture) user(t *testing.T, email string, role model.Role) service.Identity {
	t.Helper()
	u, err := f.auth.Register(context.Background(), model.RegisterRequest{
		Email:    email,
		Name:     "User " + email,
		Password: "password123",
		Role:     role.String(),
	})
	require.NoError(t, err)
	return service.IdentityOf(u)
}

// classroom creates a teacher-owned class with one enrolled student and one live session.
func (f *fixture) classroom(t *testing.T) (teacher, student service.Identity, class *model.Class, session *model.LiveSession) {
	t.Helper()
	ctx := context.Background()

	teacher = f.user(t, "teacher@example.com", model.RoleTeacher)
	student = f.user(t, "student@example.com", model.RoleStudent)

	class, err := f.classes.Create(ctx, teacher, "Informatika Dasar")
	require.NoError(t, err)
	_, err = f.classes.Join(ctx, student, class.Code)
	require.NoError(t, err)

	session, err = f.sessions.Create(ctx, teacher, class.ID, nil, nil)
	require.NoError(t, err)
	return teacher, student, class, session
}
