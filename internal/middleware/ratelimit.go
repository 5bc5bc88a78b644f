package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/ratelimit"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
)

// Throttler counts one attempt for a caller and origin.
type Throttler interface {
	Throttle(ctx context.Context, id service.Identity, clientIP string) (ratelimit.Result, error)
}

// RoomTokenRateLimit gates room token issuance per caller and client IP. It
// runs before body validation so malformed requests still count.
func RoomTokenRateLimit(t Throttler, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := MustIdentity(c)
		res, err := t.Throttle(c.Request.Context(), id, c.ClientIP())

		var limited *service.RateLimitedError
		switch {
		case errors.As(err, &limited):
			c.Header("Retry-After", strconv.Itoa(limited.RetryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(limited.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		case err != nil:
			log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Rate limit check failed")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Next()
	}
}
