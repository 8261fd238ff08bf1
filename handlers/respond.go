package handlers

import (
	"net/http"

	"jamb/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf maps a domain error kind to its HTTP status.
func statusOf(err error) int {
	switch utils.KindOf(err) {
	case utils.KindValidation:
		return http.StatusBadRequest
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindForbidden:
		return http.StatusForbidden
	case utils.KindConflict:
		return http.StatusConflict
	case utils.KindAuth:
		return http.StatusUnauthorized
	case utils.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes {"error": ...}. Messages of unclassified errors never
// reach the client.
func respondError(c *gin.Context, err error, action string) {
	logger := getLogger(c)
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error(action, zap.Error(err))
	} else {
		logger.Warn(action, zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": utils.PublicMessage(err)})
}

func badRequest(c *gin.Context, err error) {
	getLogger(c).Warn("Invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

// currentUser returns the ID set by JWTAuthUserMiddleware.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		getLogger(c).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
