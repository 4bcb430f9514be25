package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService       service.MenuService
	permissionService service.PermissionService
}

func NewMenuHandler(menuService service.MenuService, permissionService service.PermissionService) *MenuHandler {
	return &MenuHandler{menuService: menuService, permissionService: permissionService}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menus := router.Group("/menus")
	menus.Use(middleware.RequireAuth())
	{
		menus.GET("", h.MyMenuTree)
		menus.GET("/:key/can-view", h.CanView)
	}
}

// MyMenuTree returns the acting user's visible menu tree
// @Summary      Visible menu tree
// @Description  Returns the menus the acting user's role can view, nested under their parents. Visible children of hidden parents are dropped.
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.MenuNode}
// @Failure      401  {object}  response.Response
// @Router       /menus [get]
func (h *MenuHandler) MyMenuTree(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	tree, err := h.menuService.MenusByUser(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tree))
}

// CanView reports whether the acting user may view a menu
// @Summary      Check menu visibility
// @Tags         menus
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Menu unique key"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /menus/{key}/can-view [get]
func (h *MenuHandler) CanView(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	canView, err := h.permissionService.CanViewMenu(c.Request.Context(), actorID, c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"can_view": canView}))
}
