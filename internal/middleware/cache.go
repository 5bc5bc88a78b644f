package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as uncacheable. Applied to routes that return
// identity or room tokens.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
