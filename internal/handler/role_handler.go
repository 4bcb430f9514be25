package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService       service.RoleService
	permissionService service.PermissionService
}

func NewRoleHandler(roleService service.RoleService, permissionService service.PermissionService) *RoleHandler {
	return &RoleHandler{roleService: roleService, permissionService: permissionService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/roles")
	roles.Use(middleware.RequireAuth())
	{
		roles.GET("", h.ListRoles)
		roles.POST("", h.CreateRole)
		roles.PUT("/:id", h.UpdateRole)
		roles.DELETE("/:id", h.DeleteRole)
		roles.GET("/:id/permissions", h.GetPermissionGrants)
		roles.PUT("/:id/permissions", h.ReplacePermissionGrants)
		roles.GET("/:id/menus", h.GetMenuGrants)
		roles.PUT("/:id/menus", h.ReplaceMenuGrants)
	}

	perms := router.Group("/permissions")
	perms.Use(middleware.RequireAuth())
	{
		perms.GET("", h.ListPermissions)
	}
}

// ListRoles returns all roles
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Failure      403  {object}  response.Response
// @Router       /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	roles, err := h.roleService.ListRoles(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// CreateRole creates a new custom role
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRoleRequest  true  "Create Role Payload"
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// UpdateRole renames a role
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Update Role Payload"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      404      {object}  response.Response
// @Router       /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), actorID, roleID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole deletes a non-system role with no assigned users
// @Summary      Delete role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), actorID, roleID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deleted successfully"}))
}

// GetPermissionGrants returns a role's permission grant set
// @Summary      Get role permission grants
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.PermissionGrant}
// @Failure      403  {object}  response.Response
// @Router       /roles/{id}/permissions [get]
func (h *RoleHandler) GetPermissionGrants(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	grants, err := h.roleService.GetPermissionGrants(c.Request.Context(), actorID, roleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, grants))
}

// ReplacePermissionGrants replaces a role's entire permission grant set
// @Summary      Replace role permission grants
// @Description  Swaps every permission grant of the role in one transaction. Grants are replaced wholesale, never merged.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      []service.PermissionGrant  true  "Grant Set"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /roles/{id}/permissions [put]
func (h *RoleHandler) ReplacePermissionGrants(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var grants []service.PermissionGrant
	if err := c.ShouldBindJSON(&grants); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.roleService.ReplacePermissionGrants(c.Request.Context(), actorID, roleID, grants); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission grants replaced"}))
}

// GetMenuGrants returns a role's menu grant set
// @Summary      Get role menu grants
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.MenuGrant}
// @Failure      403  {object}  response.Response
// @Router       /roles/{id}/menus [get]
func (h *RoleHandler) GetMenuGrants(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	grants, err := h.roleService.GetMenuGrants(c.Request.Context(), actorID, roleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, grants))
}

// ReplaceMenuGrants replaces a role's entire menu grant set
// @Summary      Replace role menu grants
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Role ID"
// @Param        payload  body      []service.MenuGrant  true  "Menu Grant Set"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /roles/{id}/menus [put]
func (h *RoleHandler) ReplaceMenuGrants(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}
	roleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var grants []service.MenuGrant
	if err := c.ShouldBindJSON(&grants); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.roleService.ReplaceMenuGrants(c.Request.Context(), actorID, roleID, grants); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Menu grants replaced"}))
}

// ListPermissions returns the active permission catalog
// @Summary      List permissions
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Permission}
// @Router       /permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.permissionService.ListPermissions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}
