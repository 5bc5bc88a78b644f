// Package roomgrant mints access tokens for the video transport. Tokens are
// HS256 JWTs in the LiveKit access-token layout: issuer is the API key,
// subject is the participant identity and the "video" claim carries the room
// capabilities.
package roomgrant

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kelaslive/kelaslive-backend/internal/model"
)

// DefaultTTL matches the LiveKit server SDK default token lifetime.
const DefaultTTL = 6 * time.Hour

// TrackSource names a publishable track kind.
type TrackSource string

const (
	SourceCamera           TrackSource = "camera"
	SourceMicrophone       TrackSource = "microphone"
	SourceScreenShare      TrackSource = "screen_share"
	SourceScreenShareAudio TrackSource = "screen_share_audio"
)

// VideoGrant is the capability set embedded in a room token.
type VideoGrant struct {
	Room              string        `json:"room,omitempty"`
	RoomJoin          bool          `json:"roomJoin,omitempty"`
	RoomCreate        bool          `json:"roomCreate,omitempty"`
	CanPublish        *bool         `json:"canPublish,omitempty"`
	CanSubscribe      *bool         `json:"canSubscribe,omitempty"`
	CanPublishData    *bool         `json:"canPublishData,omitempty"`
	CanPublishSources []TrackSource `json:"canPublishSources,omitempty"`
}

// CanPublishSource reports whether src is in the publish allow-list.
func (g *VideoGrant) CanPublishSource(src TrackSource) bool {
	for _, s := range g.CanPublishSources {
		if s == src {
			return true
		}
	}
	return false
}

// Claims is the JWT body of a room token.
type Claims struct {
	jwt.RegisteredClaims
	Name     string      `json:"name,omitempty"`
	Metadata string      `json:"metadata,omitempty"`
	Video    *VideoGrant `json:"video,omitempty"`
}

// GrantFor builds the capability set a role receives in room.
func GrantFor(role model.Role, room string) (VideoGrant, error) {
	yes := true
	g := VideoGrant{
		Room:           room,
		RoomJoin:       true,
		CanPublish:     &yes,
		CanSubscribe:   &yes,
		CanPublishData: &yes,
	}

	switch role {
	case model.RoleTeacher:
		g.RoomCreate = true
		g.CanPublishSources = []TrackSource{SourceCamera, SourceMicrophone, SourceScreenShare, SourceScreenShareAudio}
	case model.RoleStudent:
		g.CanPublishSources = []TrackSource{SourceCamera, SourceMicrophone}
	default:
		return VideoGrant{}, fmt.Errorf("no room capabilities for role %d", role)
	}
	return g, nil
}

// Signer issues room tokens with one API key pair.
type Signer struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewSigner creates a Signer. A non-positive ttl falls back to DefaultTTL.
func NewSigner(apiKey, apiSecret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{apiKey: apiKey, apiSecret: []byte(apiSecret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token letting identity join room with the role's capabilities.
func (s *Signer) Issue(identity, name, room string, role model.Role) (string, error) {
	if identity == "" || room == "" {
		return "", errors.New("identity and room are required")
	}
	grant, err := GrantFor(role, room)
	if err != nil {
		return "", err
	}
	meta, err := json.Marshal(struct {
		Role model.Role `json:"role"`
	}{Role: role})
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			ID:        identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name:     name,
		Metadata: string(meta),
		Video:    &grant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.apiSecret)
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}

// Parse verifies a room token signed by s and returns its claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.apiKey),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse room token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid room token claims")
	}
	return claims, nil
}
