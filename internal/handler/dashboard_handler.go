package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard")
	dashboard.Use(middleware.RequireAuth())
	{
		dashboard.GET("", h.Overview)
	}
}

// Overview returns the company's aggregate task picture
// @Summary      Dashboard overview
// @Description  Returns task, project, team and user counters, the completion rate, a per-status breakdown, and the actor's recent tasks
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Failure      403  {object}  response.Response
// @Router       /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	overview, err := h.dashboardService.Overview(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
