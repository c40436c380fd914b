package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Test is the liveness check.
func Test() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "API is working")
	}
}
