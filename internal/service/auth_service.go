package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and password hashing.
type AuthService struct {
	users      UserStore
	tokens     *TokenAuthority
	bcryptCost int
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *TokenAuthority, bcryptCost int, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "auth").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The role is fixed for the account's lifetime.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, &FieldError{Field: "role", Message: "must be TEACHER or STUDENT"}
	}
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        NormalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", u.ID.String()).Stringer("role", u.Role).Msg("User registered")
	return u, nil
}

// Login verifies credentials and returns the user with a fresh session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(IdentityOf(u))
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Me reloads the caller's account. A deleted account is treated as signed out.
func (s *AuthService) Me(ctx context.Context, id Identity) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// IdentityOf builds the token payload for u.
func IdentityOf(u *model.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
