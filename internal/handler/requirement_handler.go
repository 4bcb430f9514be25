package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequirementHandler struct {
	requirementService service.RequirementService
}

func NewRequirementHandler(requirementService service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirementService: requirementService}
}

func (h *RequirementHandler) RegisterRoutes(router *gin.RouterGroup) {
	requirements := router.Group("/requirements")
	requirements.Use(middleware.RequireAuth())
	{
		requirements.GET("/:id", h.Get)
		requirements.POST("", h.Create)
		requirements.PUT("/:id", h.Update)
		requirements.DELETE("/:id", h.Delete)
	}

	taskReqs := router.Group("/tasks/:id/requirements")
	taskReqs.Use(middleware.RequireAuth())
	{
		taskReqs.GET("", h.ListByTask)
		taskReqs.POST("/:reqId", h.LinkToTask)
		taskReqs.DELETE("/:reqId", h.UnlinkFromTask)
	}
}

// Get returns one requirement
// @Summary      Get requirement
// @Tags         requirements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requirement ID"
// @Success      200  {object}  response.Response{data=service.RequirementResponse}
// @Failure      404  {object}  response.Response
// @Router       /requirements/{id} [get]
func (h *RequirementHandler) Get(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	requirementID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	requirement, err := h.requirementService.Get(c.Request.Context(), actorID, requirementID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requirement))
}

// Create creates a requirement inside a project
// @Summary      Create requirement
// @Tags         requirements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequirementRequest  true  "Create Requirement Payload"
// @Success      201      {object}  response.Response{data=service.RequirementResponse}
// @Failure      400      {object}  response.Response
// @Router       /requirements [post]
func (h *RequirementHandler) Create(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requirement, err := h.requirementService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, requirement))
}

// Update modifies a requirement
// @Summary      Update requirement
// @Tags         requirements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Requirement ID"
// @Param        payload  body      service.UpdateRequirementRequest  true  "Update Requirement Payload"
// @Success      200      {object}  response.Response{data=service.RequirementResponse}
// @Failure      404      {object}  response.Response
// @Router       /requirements/{id} [put]
func (h *RequirementHandler) Update(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	requirementID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	requirement, err := h.requirementService.Update(c.Request.Context(), actorID, requirementID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requirement))
}

// Delete removes a requirement and its task links
// @Summary      Delete requirement
// @Tags         requirements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requirement ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requirements/{id} [delete]
func (h *RequirementHandler) Delete(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	requirementID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.requirementService.Delete(c.Request.Context(), actorID, requirementID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Requirement deleted successfully"}))
}

// ListByTask returns the requirements linked to a task
// @Summary      List task requirements
// @Tags         requirements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=[]service.RequirementResponse}
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id}/requirements [get]
func (h *RequirementHandler) ListByTask(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	requirements, err := h.requirementService.ListByTask(c.Request.Context(), actorID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requirements))
}

// LinkToTask attaches a requirement to a task
// @Summary      Link requirement to task
// @Description  Rejects duplicate links and cross-project pairs
// @Tags         requirements
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Task ID"
// @Param        reqId  path      string  true  "Requirement ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /tasks/{id}/requirements/{reqId} [post]
func (h *RequirementHandler) LinkToTask(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	requirementID, ok := pathUUID(c, "reqId")
	if !ok {
		return
	}

	if err := h.requirementService.LinkToTask(c.Request.Context(), actorID, taskID, requirementID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Requirement linked successfully"}))
}

// UnlinkFromTask detaches a requirement from a task
// @Summary      Unlink requirement from task
// @Tags         requirements
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Task ID"
// @Param        reqId  path      string  true  "Requirement ID"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /tasks/{id}/requirements/{reqId} [delete]
func (h *RequirementHandler) UnlinkFromTask(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	requirementID, ok := pathUUID(c, "reqId")
	if !ok {
		return
	}

	if err := h.requirementService.UnlinkFromTask(c.Request.Context(), actorID, taskID, requirementID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Requirement unlinked successfully"}))
}
