package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/transport/http/middleware"
	"github.com/csmathguy/clarity/internal/usecase"
)

// GTDHandler exposes thought, project, and action endpoints. Every route is
// scoped to the authenticated user.
type GTDHandler struct {
	gtd *usecase.GTDService
}

// NewGTDHandler constructs GTDHandler.
func NewGTDHandler(gtd *usecase.GTDService) *GTDHandler {
	return &GTDHandler{gtd: gtd}
}

// RegisterRoutes binds GTD routes. The group is expected to carry RequireAuth.
func (h *GTDHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/thoughts", h.captureThought)
	r.GET("/thoughts", h.listInbox)
	r.POST("/thoughts/:id/process", h.processThought)
	r.DELETE("/thoughts/:id", h.deleteThought)

	r.POST("/projects", h.createProject)
	r.GET("/projects", h.listProjects)
	r.GET("/projects/:id", h.getProject)
	r.PATCH("/projects/:id", h.updateProject)
	r.DELETE("/projects/:id", h.deleteProject)

	r.POST("/actions", h.createAction)
	r.GET("/actions", h.listActions)
	r.PATCH("/actions/:id", h.updateAction)
	r.DELETE("/actions/:id", h.deleteAction)
}

var gtdNotFoundCases = []ErrorCase{
	{Err: usecase.ErrRecordNotFound, Status: http.StatusNotFound, Message: "not found"},
}

func (h *GTDHandler) captureThought(c *gin.Context) {
	var req ThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "content is required"))
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	thought, err := h.gtd.CaptureThought(c.Request.Context(), userID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "capture failed"))
		return
	}

	c.JSON(http.StatusCreated, toThoughtResponse(*thought))
}

func (h *GTDHandler) listInbox(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	thoughts, err := h.gtd.ListInbox(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "inbox listing failed"))
		return
	}

	out := make([]ThoughtResponse, 0, len(thoughts))
	for _, thought := range thoughts {
		out = append(out, toThoughtResponse(thought))
	}
	c.JSON(http.StatusOK, out)
}

func (h *GTDHandler) processThought(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.gtd.ProcessThought(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "processing failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "thought processed"})
}

func (h *GTDHandler) deleteThought(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.gtd.DeleteThought(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "deletion failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GTDHandler) createProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	project, err := h.gtd.CreateProject(c.Request.Context(), userID, req.Name, req.Outcome)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "project creation failed"))
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(*project))
}

func (h *GTDHandler) listProjects(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	projects, err := h.gtd.ListProjects(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "project listing failed"))
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		out = append(out, toProjectResponse(project))
	}
	c.JSON(http.StatusOK, out)
}

func (h *GTDHandler) getProject(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	project, err := h.gtd.GetProject(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "project lookup failed")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project))
}

func (h *GTDHandler) updateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid project payload"))
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	project, err := h.gtd.UpdateProject(c.Request.Context(), userID, c.Param("id"), usecase.UpdateProjectInput{
		Name:    req.Name,
		Outcome: req.Outcome,
		Status:  domain.ProjectStatus(req.Status),
	})
	if err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusBadRequest, "project update failed")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project))
}

func (h *GTDHandler) deleteProject(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.gtd.DeleteProject(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "deletion failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GTDHandler) createAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "description is required"))
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	action, err := h.gtd.CreateAction(c.Request.Context(), userID, usecase.CreateActionInput{
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Context:     req.Context,
		DueAt:       req.DueAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "action creation failed")
		return
	}

	c.JSON(http.StatusCreated, toActionResponse(*action))
}

func (h *GTDHandler) listActions(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	filter := port.ActionFilter{
		Status:    domain.ActionStatus(c.Query("status")),
		ProjectID: c.Query("project_id"),
	}

	actions, err := h.gtd.ListActions(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "action listing failed"))
		return
	}

	out := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		out = append(out, toActionResponse(action))
	}
	c.JSON(http.StatusOK, out)
}

func (h *GTDHandler) updateAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid action payload"))
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	action, err := h.gtd.UpdateAction(c.Request.Context(), userID, c.Param("id"), usecase.UpdateActionInput{
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Context:     req.Context,
		Status:      domain.ActionStatus(req.Status),
		DueAt:       req.DueAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusBadRequest, "action update failed")
		return
	}

	c.JSON(http.StatusOK, toActionResponse(*action))
}

func (h *GTDHandler) deleteAction(c *gin.Context) {
	userID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.gtd.DeleteAction(c.Request.Context(), userID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, gtdNotFoundCases, http.StatusInternalServerError, "deletion failed")
		return
	}

	c.Status(http.StatusNoContent)
}
