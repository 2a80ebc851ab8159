package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthIDKey is where the caller's AuthID lives in the gin context.
const AuthIDKey = "authenticatedUserID"

// InternalAuthMiddleware only lets through requests carrying the shared
// X-Internal-Secret. Behind it the gateway's X-Authenticated-User-ID header
// is trusted as-is.
func InternalAuthMiddleware(internalSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Internal-Secret")
		if internalSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(internalSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "Forbidden: invalid internal secret", "code": "forbidden"},
			})
			return
		}

		if userID := c.GetHeader("X-Authenticated-User-ID"); userID != "" {
			c.Set(AuthIDKey, userID)
		}

		c.Next()
	}
}
