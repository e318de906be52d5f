package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csmathguy/clarity/internal/infra/security"
	"github.com/csmathguy/clarity/internal/transport/http/middleware"
	"github.com/csmathguy/clarity/internal/usecase"
)

const genericAuthFailure = "invalid credentials"

// AuthHandler exposes authentication and password reset endpoints.
type AuthHandler struct {
	auth      *usecase.AuthService
	resets    *usecase.PasswordResetService
	validator *security.PasswordValidator
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, resets *usecase.PasswordResetService, validator *security.PasswordValidator) *AuthHandler {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &AuthHandler{auth: auth, resets: resets, validator: validator}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.POST("/reset/request", h.resetRequest)
	r.POST("/reset/confirm", h.resetConfirm)
}

// login validates credentials and issues a session. An unknown user, a wrong
// password, a disabled account, and a locked account all produce the same 401
// body: the response carries no account-state signal.
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier and password are required"))
		return
	}

	session, user, err := h.auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: genericAuthFailure},
			{Err: usecase.ErrAccountDisabled, Status: http.StatusUnauthorized, Message: genericAuthFailure},
			{Err: usecase.ErrAccountLocked, Status: http.StatusUnauthorized, Message: genericAuthFailure},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, session.ID, maxAge, "/", "", false, true)

	c.JSON(http.StatusOK, LoginResponse{
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      toUserSummary(user),
	})
}

// logout removes the presented session. Unknown or missing sessions still get
// a 200: logout is idempotent and reveals nothing.
func (h *AuthHandler) logout(c *gin.Context) {
	sessionID := middleware.SessionIDFromRequest(c)

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// resetRequest accepts a self-service reset request. The response is 200
// whether or not the identifier resolved to an account.
func (h *AuthHandler) resetRequest(c *gin.Context) {
	var req ResetRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier is required"))
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Identifier); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "reset request failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "if the account exists, a reset token has been issued",
	})
}

// resetConfirm redeems a reset token. The new password is validated here at
// the transport boundary, before the reset service is invoked.
func (h *AuthHandler) resetConfirm(c *gin.Context) {
	var req ResetConfirmPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and new_password are required"))
		return
	}

	if err := h.validator.Validate(req.NewPassword); err != nil {
		var violation *security.PasswordValidationError
		if errors.As(err, &violation) {
			traceID, _ := c.Get("trace_id")
			traceIDStr, _ := traceID.(string)
			c.JSON(http.StatusBadRequest, ValidationErrorResponse{
				Error:   "password does not meet policy",
				Details: []ValidationIssue{{Code: violation.Code, Message: violation.Message}},
				TraceID: traceIDStr,
			})
			return
		}
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password does not meet policy"))
		return
	}

	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidResetToken, Status: http.StatusBadRequest, Message: "invalid or expired reset token"},
			{Err: usecase.ErrExpiredResetToken, Status: http.StatusBadRequest, Message: "invalid or expired reset token"},
		}, http.StatusInternalServerError, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
