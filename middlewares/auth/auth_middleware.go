package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// AuthMiddleware authenticates the request from its bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}

		if _, err := jwt_parse.UserIDFromContext(c); err != nil {
			logger.WarnLogger.Warnf("Authenticated request without usable user id: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: missing user identification from token."})
			return
		}
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose token carries a different
// role. Runs after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwt_parse.RoleFromContext(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden: insufficient role."})
			return
		}
		c.Next()
	}
}
