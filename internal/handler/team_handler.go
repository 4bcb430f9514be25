package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) RegisterRoutes(router *gin.RouterGroup) {
	teams := router.Group("/teams")
	teams.Use(middleware.RequireAuth())
	{
		teams.GET("", h.List)
		teams.GET("/:id", h.Get)
		teams.POST("", h.Create)
		teams.PUT("/:id", h.Update)
		teams.DELETE("/:id", h.Delete)
		teams.POST("/:id/members/:userId", h.AddMember)
		teams.DELETE("/:id/members/:userId", h.RemoveMember)
	}
}

// List returns the company's teams
// @Summary      List teams
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TeamResponse}
// @Failure      403  {object}  response.Response
// @Router       /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	teams, err := h.teamService.List(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, teams))
}

// Get returns one team, including its roster when the actor may view members
// @Summary      Get team
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Team ID"
// @Success      200  {object}  response.Response{data=service.TeamResponse}
// @Failure      404  {object}  response.Response
// @Router       /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), actorID, teamID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// Create creates a team with a capacity between 5 and 10
// @Summary      Create team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTeamRequest  true  "Create Team Payload"
// @Success      201      {object}  response.Response{data=service.TeamResponse}
// @Failure      400      {object}  response.Response
// @Router       /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, team))
}

// Update modifies a team; capacity cannot shrink below the current roster
// @Summary      Update team
// @Tags         teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Team ID"
// @Param        payload  body      service.UpdateTeamRequest  true  "Update Team Payload"
// @Success      200      {object}  response.Response{data=service.TeamResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /teams/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), actorID, teamID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// Delete removes a team with no assigned tasks
// @Summary      Delete team
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Team ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), actorID, teamID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Team deleted successfully"}))
}

// AddMember adds a company user to the team
// @Summary      Add team member
// @Description  Rejects duplicates and additions beyond the team's capacity
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Team ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /teams/{id}/members/{userId} [post]
func (h *TeamHandler) AddMember(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.teamService.AddMember(c.Request.Context(), actorID, teamID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Member added successfully"}))
}

// RemoveMember removes a user from the team
// @Summary      Remove team member
// @Tags         teams
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Team ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /teams/{id}/members/{userId} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), actorID, teamID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Member removed successfully"}))
}
