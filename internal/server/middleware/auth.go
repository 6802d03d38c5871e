// file: internal/server/middleware/auth.go
// version: 2.0.0
// guid: 83c42ecb-1df2-4baf-9890-3f91ab4db6fe

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is accepted as an alternative to Bearer auth.
const APIKeyHeader = "X-API-Key"

// TokenFromRequest extracts the API key from Bearer auth or the X-API-Key
// header.
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

// RequireAPIKey guards catalog mutations. An empty key disables the check so
// local deployments work without setup.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		token := TokenFromRequest(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "authentication required",
				"code":   "UNAUTHORIZED",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":  "invalid api key",
				"code":   "UNAUTHORIZED",
				"status": http.StatusUnauthorized,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
