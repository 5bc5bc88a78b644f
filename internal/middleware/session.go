package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie binds identity tokens to the HTTP transport.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Bind sets the token as an HttpOnly, SameSite=Lax cookie on path "/" that
// lives as long as the token.
func (s SessionCookie) Bind(c *gin.Context, token string) {
	s.write(c, token, int(s.TTL/time.Second))
}

// Clear expires the cookie immediately.
func (s SessionCookie) Clear(c *gin.Context) {
	s.write(c, "", -1)
}

// write uses maxAge -1 for "delete now", which net/http emits as Max-Age=0.
func (s SessionCookie) write(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, value, maxAge, "/", "", s.Secure, true)
}
