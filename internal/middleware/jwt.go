package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kelaslive/kelaslive-backend/internal/response"
	"github.com/kelaslive/kelaslive-backend/internal/service"
)

const (
	// ContextKeyIdentity is the Gin context key for the verified caller.
	ContextKeyIdentity = "identity"
	// contextKeyAuthErr records why a presented token was rejected.
	contextKeyAuthErr = "auth_error"
)

// Authenticate resolves the caller from the session cookie, falling back to
// an Authorization bearer header and, for WebSocket upgrades only, a ?token=
// query parameter. It never aborts; RequireSession decides what is fatal.
func Authenticate(guard *service.Guard, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c, cookieName)
		if tokenStr == "" {
			c.Next()
			return
		}

		id, err := guard.RequireIdentity(tokenStr)
		if err != nil {
			c.Set(contextKeyAuthErr, err)
			c.Next()
			return
		}

		c.Set(ContextKeyIdentity, id)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

// GetIdentity returns the verified caller, if any.
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok
}

// MustIdentity returns the caller on routes behind RequireSession.
func MustIdentity(c *gin.Context) service.Identity {
	id, _ := GetIdentity(c)
	return id
}

// abortUnauthenticated distinguishes a missing token from a rejected one.
func abortUnauthenticated(c *gin.Context) {
	v, rejected := c.Get(contextKeyAuthErr)
	if !rejected {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if err, ok := v.(error); ok && service.IsExpired(err) {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
		return
	}
	response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
}
