package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

const tokenIssuer = "kelaslive"

// Identity is the verified caller carried by a session token. ExpiresAt is
// the token's expiry; it is zero for identities not derived from a token.
type Identity struct {
	UserID    uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"-"`
}

// sessionClaims is the JWT body. The subject holds the user id.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

// TokenAuthority issues and verifies HS256 identity tokens.
type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenAuthority creates a TokenAuthority with the given secret and lifetime.
func NewTokenAuthority(secret string, ttl time.Duration) *TokenAuthority {
	return &TokenAuthority{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (a *TokenAuthority) WithClock(now func() time.Time) *TokenAuthority {
	a.now = now
	return a
}

// TTL is the validity window of issued tokens.
func (a *TokenAuthority) TTL() time.Duration { return a.ttl }

// Issue signs id with an absolute expiry of now+TTL.
func (a *TokenAuthority) Issue(id Identity) (string, error) {
	if !id.Role.Valid() {
		return "", fmt.Errorf("issue token: invalid role %d", id.Role)
	}
	now := a.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry. Any failure is
// reported as ErrUnauthorized.
func (a *TokenAuthority) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrUnauthorized
	}
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: malformed claims", ErrUnauthorized)
	}

	return Identity{
		UserID:    userID,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// CheckLive fails with an expired-token error once the token id was read
// from has passed its expiry. Long-lived connections call it per message.
func (a *TokenAuthority) CheckLive(id Identity) error {
	if !id.ExpiresAt.IsZero() && !a.now().Before(id.ExpiresAt) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, jwt.ErrTokenExpired)
	}
	return nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
