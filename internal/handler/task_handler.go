package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/pagination"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	tasks.Use(middleware.RequireAuth())
	{
		tasks.GET("", h.List)
		tasks.POST("", h.Create)
		tasks.GET("/completed", h.ListCompleted)
		tasks.GET("/overdue", h.ListOverdue)
		tasks.GET("/my-recent", h.ListMyRecent)
		tasks.GET("/by-status/:name", h.ListByStatusName)
		tasks.GET("/:id", h.Get)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
		tasks.PUT("/:id/status", h.ChangeStatus)
		tasks.PUT("/:id/team", h.AssignTeam)
		tasks.POST("/:id/approve", h.Approve)
		tasks.POST("/:id/reject", h.Reject)
	}

	statuses := router.Group("/task-statuses")
	statuses.Use(middleware.RequireAuth())
	{
		statuses.GET("", h.ListStatuses)
	}
}

type changeStatusRequest struct {
	StatusID uuid.UUID `json:"status_id" binding:"required"`
}

type assignTeamRequest struct {
	TeamID uuid.UUID `json:"team_id" binding:"required"`
}

// List returns the company's tasks with optional filters
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  false  "Filter by project"
// @Param        status_id   query     string  false  "Filter by status"
// @Param        team_id     query     string  false  "Filter by team"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=[]service.TaskResponse}
// @Failure      403         {object}  response.Response
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	req := service.ListTasksRequest{Page: p.Page, Limit: p.Limit}
	if v := c.Query("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid project_id parameter"))
			return
		}
		req.ProjectID = &id
	}
	if v := c.Query("status_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid status_id parameter"))
			return
		}
		req.StatusID = &id
	}
	if v := c.Query("team_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid team_id parameter"))
			return
		}
		req.TeamID = &id
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, tasks, p, total))
}

// Create creates a task in the actor's company
// @Summary      Create task
// @Description  Creates a task. Without an explicit status the global default status is applied; creation in any status, including final ones, is allowed.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// Get returns one task with its relations
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), actorID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// Update replaces a task's fields, assignments and requirement links
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Update Task Payload"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      404      {object}  response.Response
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actorID, taskID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// Delete removes a task and its assignment and requirement rows
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actorID, taskID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Task deleted successfully"}))
}

// ChangeStatus moves a task to another status
// @Summary      Change task status
// @Description  Transitions the task. Leaving a final status, repeating the current status, or targeting another company's status is rejected.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Task ID"
// @Param        payload  body      changeStatusRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /tasks/{id}/status [put]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.ChangeStatus(c.Request.Context(), actorID, taskID, req.StatusID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// AssignTeam points the task at a team in the same company
// @Summary      Assign task to team
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "Task ID"
// @Param        payload  body      assignTeamRequest  true  "Target Team"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /tasks/{id}/team [put]
func (h *TaskHandler) AssignTeam(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req assignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.taskService.AssignTeam(c.Request.Context(), actorID, taskID, req.TeamID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Task assigned to team"}))
}

// Approve marks the task approved, clearing any rejection
// @Summary      Approve task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id}/approve [post]
func (h *TaskHandler) Approve(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Approve(c.Request.Context(), actorID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// Reject marks the task rejected, clearing any approval
// @Summary      Reject task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id}/reject [post]
func (h *TaskHandler) Reject(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Reject(c.Request.Context(), actorID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// ListCompleted returns the company's approved tasks
// @Summary      List completed tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TaskSummaryResponse}
// @Router       /tasks/completed [get]
func (h *TaskHandler) ListCompleted(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListCompleted(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// ListOverdue returns unapproved tasks past their end date
// @Summary      List overdue tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TaskSummaryResponse}
// @Router       /tasks/overdue [get]
func (h *TaskHandler) ListOverdue(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListOverdue(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// ListMyRecent returns the actor's most recently assigned tasks
// @Summary      List my recent tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TaskResponse}
// @Router       /tasks/my-recent [get]
func (h *TaskHandler) ListMyRecent(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMyRecent(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// ListStatuses returns the global status catalog
// @Summary      List task statuses
// @Description  Returns the shared status catalog in display order, with the default and final flags clients need for transitions.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.StatusOptionResponse}
// @Router       /task-statuses [get]
func (h *TaskHandler) ListStatuses(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	statuses, err := h.taskService.ListStatuses(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, statuses))
}

// ListByStatusName returns tasks currently in the named status
// @Summary      List tasks by status name
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Status name"
// @Success      200   {object}  response.Response{data=[]service.TaskSummaryResponse}
// @Router       /tasks/by-status/{name} [get]
func (h *TaskHandler) ListByStatusName(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByStatusName(c.Request.Context(), actorID, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}
