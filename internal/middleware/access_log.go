package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/rs/zerolog"
)

// AccessLog writes one structured line per request. Server errors log at
// error level, client errors at warn, the rest at debug so health checks and
// heartbeats stay quiet in production.
func AccessLog(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Debug()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ev.Str("request_id", response.RequestID(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if id, ok := GetIdentity(c); ok {
			ev.Str("user_id", id.UserID.String())
		}
		ev.Msg("Request handled")
	}
}
