package handlers

import (
	"net/http"

	"jamb/models"
	"jamb/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves registration, sessions and profile management.
type UserHandler struct {
	Service user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Service: svc}
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}
	getLogger(c).Info("User registered", zap.String("userID", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/users/logout and revokes the presented token only.
func (h *UserHandler) Logout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), userID, c.GetString("token")); err != nil {
		respondError(c, err, "Logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile handles GET /api/users/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.Service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get user profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.Service.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ChangePassword handles PUT /api/users/me/password. Every session is revoked.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed, please sign in again"})
}

// DeleteAccount handles DELETE /api/users/me.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}
	getLogger(c).Info("Account deleted", zap.String("userID", userID))
	c.Status(http.StatusNoContent)
}
