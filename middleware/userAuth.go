package middleware

import (
	"context"
	"net/http"
	"strings"

	"jamb/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// JWTAuthUserMiddleware requires a valid, unrevoked bearer token and stores the user ID
// under "userID" and the raw token under "token".
func JWTAuthUserMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization")
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if utils.KindOf(err) == utils.KindAuth {
				utils.JSONError(c, http.StatusUnauthorized, utils.PublicMessage(err))
				return
			}
			utils.GetLogger().Error("Token check failed", zap.Error(err))
			utils.JSONError(c, http.StatusServiceUnavailable, "Authentication is temporarily unavailable")
			return
		}

		c.Set("userID", userID)
		c.Set("token", tokenString)
		c.Next()
	}
}
