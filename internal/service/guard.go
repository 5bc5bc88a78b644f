package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
)

// Guard resolves callers from tokens and enforces resource access. Resources
// are loaded fresh on every check, so membership changes apply immediately.
type Guard struct {
	tokens   *TokenAuthority
	classes  ClassStore
	sessions SessionStore
}

// NewGuard creates a new Guard.
func NewGuard(tokens *TokenAuthority, classes ClassStore, sessions SessionStore) *Guard {
	return &Guard{tokens: tokens, classes: classes, sessions: sessions}
}

// CurrentIdentity verifies token and returns the caller. Absent or invalid
// tokens yield ok=false.
func (g *Guard) CurrentIdentity(token string) (Identity, bool) {
	id, err := g.RequireIdentity(token)
	return id, err == nil
}

// RequireIdentity returns an error wrapping ErrUnauthorized without a valid
// token (IsExpired tells an expired one apart), or ErrForbidden when allowed
// is non-empty and excludes the caller's role.
func (g *Guard) RequireIdentity(token string, allowed ...model.Role) (Identity, error) {
	id, err := g.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	if err := RequireRole(id, allowed...); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// RequireLive re-checks the expiry of an identity resolved earlier, for
// callers that act on it after the request that carried the token.
func (g *Guard) RequireLive(id Identity) error {
	return g.tokens.CheckLive(id)
}

// RequireRole checks an already resolved identity against allowed roles.
func RequireRole(id Identity, allowed ...model.Role) error {
	if len(allowed) > 0 && !slices.Contains(allowed, id.Role) {
		return ErrForbidden
	}
	return nil
}

// CanAccessClass reports whether id may see class: teachers by ownership,
// students by enrolment.
func CanAccessClass(id Identity, class *model.Class) bool {
	switch id.Role {
	case model.RoleTeacher:
		return class.TeacherID == id.UserID
	case model.RoleStudent:
		return class.HasStudent(id.UserID)
	default:
		return false
	}
}

// AuthorizeClass loads a class and checks access. Existence is checked first.
func (g *Guard) AuthorizeClass(ctx context.Context, id Identity, classID uuid.UUID) (*model.Class, error) {
	class, err := g.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("load class: %w", err)
	}
	if !CanAccessClass(id, class) {
		return nil, ErrForbidden
	}
	return class, nil
}

// AuthorizeSession loads a session by id and checks access to its class.
func (g *Guard) AuthorizeSession(ctx context.Context, id Identity, sessionID uuid.UUID) (*model.LiveSession, error) {
	s, err := g.sessions.GetByID(ctx, sessionID)
	return g.authorizeLoadedSession(ctx, id, s, err)
}

// AuthorizeRoom loads a session by room name and checks access to its class.
func (g *Guard) AuthorizeRoom(ctx context.Context, id Identity, roomName string) (*model.LiveSession, error) {
	s, err := g.sessions.GetByRoomName(ctx, roomName)
	return g.authorizeLoadedSession(ctx, id, s, err)
}

func (g *Guard) authorizeLoadedSession(ctx context.Context, id Identity, s *model.LiveSession, err error) (*model.LiveSession, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if _, err := g.AuthorizeClass(ctx, id, s.ClassID); err != nil {
		return nil, err
	}
	return s, nil
}
