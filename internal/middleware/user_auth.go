package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin runs after Auth and lets only admin tokens through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			return
		}
		c.Next()
	}
}
