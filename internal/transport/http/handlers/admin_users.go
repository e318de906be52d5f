package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/transport/http/middleware"
	"github.com/csmathguy/clarity/internal/usecase"
)

// AdminUsersHandler exposes administrative account management endpoints.
type AdminUsersHandler struct {
	users  *usecase.UserService
	resets *usecase.PasswordResetService
}

// NewAdminUsersHandler constructs AdminUsersHandler.
func NewAdminUsersHandler(users *usecase.UserService, resets *usecase.PasswordResetService) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, resets: resets}
}

// RegisterRoutes binds admin routes. The group is expected to carry
// RequireAuth and RequireAdmin already.
func (h *AdminUsersHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.createUser)
	r.GET("/users/:id", h.getUser)
	r.POST("/users/:id/reset", h.issueReset)
	r.PATCH("/users/:id/status", h.setStatus)
}

func (h *AdminUsersHandler) createUser(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	adminID, _ := middleware.GetAuthenticatedUserID(c)

	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	user, resetToken, err := h.users.CreateUser(c.Request.Context(), adminID, usecase.CreateUserInput{
		Username: req.Username,
		Email:    email,
		Name:     req.Name,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username or email already taken"},
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "invalid role"},
		}, http.StatusInternalServerError, "user creation failed")
		return
	}

	c.JSON(http.StatusCreated, AdminCreateUserResponse{
		User:       toUserSummary(user),
		ResetToken: resetToken,
	})
}

func (h *AdminUsersHandler) getUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "user lookup failed")
		return
	}

	c.JSON(http.StatusOK, toUserSummary(user))
}

// issueReset mints a reset token for an existing account. The raw token
// appears only in this response.
func (h *AdminUsersHandler) issueReset(c *gin.Context) {
	adminID, _ := middleware.GetAuthenticatedUserID(c)

	raw, token, err := h.resets.IssueToken(c.Request.Context(), adminID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "reset token issuance failed")
		return
	}

	c.JSON(http.StatusOK, AdminResetResponse{
		ResetToken: raw,
		ExpiresAt:  token.ExpiresAt,
	})
}

func (h *AdminUsersHandler) setStatus(c *gin.Context) {
	var req AdminSetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	status := domain.UserStatus(req.Status)
	if status != domain.UserStatusActive && status != domain.UserStatusDisabled {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status must be active or disabled"))
		return
	}

	if err := h.users.SetUserStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "status update failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "status updated"})
}
