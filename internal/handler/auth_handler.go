package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", h.Login)
	router.POST("/auth/signup", h.Signup)
	router.POST("/auth/logout", h.Logout)
	router.GET("/auth/has-superadmin/:code", h.HasSuperAdmin)

	authed := router.Group("")
	authed.Use(middleware.RequireAuth())
	{
		authed.POST("/auth/change-password", h.ChangePassword)
	}
}

// Login authenticates by email and password
// @Summary      Login user
// @Description  Authenticates a user, returning a JWT token with the user's company and visible menus. A pending forced password change withholds the token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	session, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if session.Token != "" {
		middleware.SetTokenCookie(c, session.Token)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// Signup bootstraps a new tenant
// @Summary      Sign up
// @Description  Creates a company (found or created by name) and its first admin user, returning a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SignupRequest  true  "Signup Payload"
// @Success      201      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	session, err := h.userService.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if session.Token != "" {
		middleware.SetTokenCookie(c, session.Token)
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, session))
}

// Logout clears the access token cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out successfully"}))
}

// HasSuperAdmin checks for an existing admin on a company
// @Summary      Check for an existing SuperAdmin
// @Description  Reports whether the company with the given code already has an active SuperAdmin account
// @Tags         auth
// @Produce      json
// @Param        code  path      string  true  "Company Code"
// @Success      200   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /auth/has-superadmin/{code} [get]
func (h *AuthHandler) HasSuperAdmin(c *gin.Context) {
	exists, err := h.userService.HasSuperAdmin(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"has_superadmin": exists}))
}

// ChangePassword updates the acting user's password
// @Summary      Change password
// @Description  Verifies the current password and sets a new one, clearing any forced-change flag
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangePasswordRequest  true  "Change Password Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), actorID, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password changed successfully"}))
}
