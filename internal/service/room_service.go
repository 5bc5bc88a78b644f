package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/ratelimit"
	"github.com/kelaslive/kelaslive-backend/internal/roomgrant"
	"github.com/rs/zerolog"
)

// RoomPolicy is the issuance throttle.
type RoomPolicy struct {
	Limit  int
	Window time.Duration
}

// RoomEndpoints are surfaced to clients with every grant.
type RoomEndpoints struct {
	URL        string
	TurnServer string
}

// RoomService mints role-scoped room access grants under a rate limit.
type RoomService struct {
	guard     *Guard
	limiter   *ratelimit.Limiter
	signer    *roomgrant.Signer
	policy    RoomPolicy
	endpoints RoomEndpoints
	log       zerolog.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	guard *Guard,
	limiter *ratelimit.Limiter,
	signer *roomgrant.Signer,
	policy RoomPolicy,
	endpoints RoomEndpoints,
	log zerolog.Logger,
) *RoomService {
	return &RoomService{
		guard:     guard,
		limiter:   limiter,
		signer:    signer,
		policy:    policy,
		endpoints: endpoints,
		log:       log.With().Str("component", "room").Logger(),
	}
}

// Throttle counts one issuance attempt for the caller from clientIP. A denial
// is returned as *RateLimitedError; the result is returned either way so
// callers can emit limit headers.
func (s *RoomService) Throttle(ctx context.Context, id Identity, clientIP string) (ratelimit.Result, error) {
	res, err := s.limiter.Check(ctx, id.UserID.String()+":"+clientIP, s.policy.Limit, s.policy.Window)
	if err != nil {
		return res, fmt.Errorf("rate limit check: %w", err)
	}
	if !res.Allowed {
		s.log.Warn().Str("user_id", id.UserID.String()).Int("retry_after", res.RetryAfter).Msg("Room token throttled")
		return res, &RateLimitedError{Limit: res.Limit, Remaining: 0, RetryAfter: res.RetryAfter}
	}
	return res, nil
}

// Issue resolves the session behind req.Room, checks class access and signs
// a grant for the caller's role.
func (s *RoomService) Issue(ctx context.Context, id Identity, req model.RoomTokenRequest) (*model.RoomCredentials, error) {
	if _, err := s.guard.AuthorizeRoom(ctx, id, req.Room); err != nil {
		return nil, err
	}

	token, err := s.signer.Issue(req.Identity, id.Name, req.Room, id.Role)
	if err != nil {
		return nil, fmt.Errorf("sign room grant: %w", err)
	}

	return &model.RoomCredentials{
		Token:      token,
		URL:        s.endpoints.URL,
		TurnServer: s.endpoints.TurnServer,
		Participant: model.Participant{
			Identity: req.Identity,
			Name:     id.Name,
			Role:     id.Role,
		},
	}, nil
}
