package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/csmathguy/clarity/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse carries field-level validation failures.
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details []ValidationIssue `json:"details,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

// ValidationIssue describes one failed validation rule.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Name     string            `json:"name,omitempty"`
	Email    *string           `json:"email,omitempty"`
	Role     domain.UserRole   `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

func toUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	SessionID string      `json:"session_id"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// ResetRequestPayload defines the self-service reset request body.
type ResetRequestPayload struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ResetConfirmPayload defines the reset confirmation body.
type ResetConfirmPayload struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// AdminCreateUserRequest defines the admin user provisioning payload.
type AdminCreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// AdminCreateUserResponse returns the created account and its one-time reset token.
type AdminCreateUserResponse struct {
	User       UserSummary `json:"user"`
	ResetToken string      `json:"reset_token"`
}

// AdminResetResponse returns an admin-issued reset token.
type AdminResetResponse struct {
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AdminSetStatusRequest changes an account's status.
type AdminSetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ThoughtRequest captures a new inbox item.
type ThoughtRequest struct {
	Content string `json:"content" binding:"required"`
}

// ThoughtResponse is the API view of a thought.
type ThoughtResponse struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func toThoughtResponse(thought domain.Thought) ThoughtResponse {
	return ThoughtResponse{
		ID:          thought.ID,
		Content:     thought.Content,
		CreatedAt:   thought.CreatedAt,
		ProcessedAt: thought.ProcessedAt,
	}
}

// ProjectRequest creates or updates a project.
type ProjectRequest struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Status  string `json:"status"`
}

// ProjectResponse is the API view of a project.
type ProjectResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Outcome   string               `json:"outcome,omitempty"`
	Status    domain.ProjectStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func toProjectResponse(project domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		Outcome:   project.Outcome,
		Status:    project.Status,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// ActionRequest creates or updates an action.
type ActionRequest struct {
	ProjectID   *string    `json:"project_id"`
	Description string     `json:"description"`
	Context     *string    `json:"context"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"due_at"`
}

// ActionResponse is the API view of an action.
type ActionResponse struct {
	ID          string              `json:"id"`
	ProjectID   *string             `json:"project_id,omitempty"`
	Description string              `json:"description"`
	Context     *string             `json:"context,omitempty"`
	Status      domain.ActionStatus `json:"status"`
	DueAt       *time.Time          `json:"due_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toActionResponse(action domain.Action) ActionResponse {
	return ActionResponse{
		ID:          action.ID,
		ProjectID:   action.ProjectID,
		Description: action.Description,
		Context:     action.Context,
		Status:      action.Status,
		DueAt:       action.DueAt,
		CreatedAt:   action.CreatedAt,
		UpdatedAt:   action.UpdatedAt,
	}
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness of downstream dependencies.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
