package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
	"github.com/rs/zerolog"
)

// classify maps a service error onto exactly one HTTP status and code.
func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case service.IsExpired(err):
		return http.StatusUnauthorized, response.ErrTokenExpired
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, response.ErrTokenInvalid
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, service.ErrClassNotFound):
		return http.StatusNotFound, response.ErrClassNotFound
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, response.ErrEmailTaken
	case errors.Is(err, service.ErrCodeExhausted):
		return http.StatusConflict, response.ErrCodeExhausted
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, response.ErrConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, response.ErrValidation
	default:
		var limited *service.RateLimitedError
		if errors.As(err, &limited) {
			return http.StatusTooManyRequests, response.ErrRateLimitExceeded
		}
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// respondError writes the envelope for err. Internal errors are logged with
// the request id and never echoed to the client.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}

	var fe *service.FieldError
	if errors.As(err, &fe) {
		response.FailWithFields(c, status, code, map[string]string{fe.Field: fe.Message})
		return
	}
	response.Fail(c, status, code)
}
