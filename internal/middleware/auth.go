package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"repairhub/internal/auth"
)

const (
	AuthHeader = "x-auth-token"
	claimsKey  = "claims"
)

// AccessParser verifies access tokens.
type AccessParser interface {
	ParseAccess(raw string) (*auth.Claims, error)
}

// Auth requires a valid access token in x-auth-token (or a Bearer
// Authorization header) and stores its claims on the context.
func Auth(tokens AccessParser) gin.HandlerFunc {
	log := zap.L().Named("auth")
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied. No token provided"})
			return
		}

		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			log.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if raw := strings.TrimSpace(c.GetHeader(AuthHeader)); raw != "" {
		return raw
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// UserID returns the caller's id. Auth has already checked its format.
func UserID(c *gin.Context) primitive.ObjectID {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return primitive.NilObjectID
	}
	id, _ := claims.ObjectID()
	return id
}

func IsAdmin(c *gin.Context) bool {
	claims, ok := ClaimsFrom(c)
	return ok && claims.IsAdmin
}
