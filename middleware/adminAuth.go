package middleware

import (
	"crypto/subtle"
	"net/http"

	"jamb/utils"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware checks the X-Admin-Key header against the configured key. An
// empty key disables the admin API.
func AdminAuthMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			utils.JSONError(c, http.StatusForbidden, "Admin API is disabled")
			return
		}
		provided := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized admin access")
			return
		}
		c.Set("isAdmin", true)
		c.Next()
	}
}
