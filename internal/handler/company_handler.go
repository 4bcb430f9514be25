package handler

import (
	"net/http"

	"taskhub/internal/middleware"
	"taskhub/internal/service"
	"taskhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Code lookup is public so signup flows can validate an invite code.
	router.GET("/companies/code/:code", h.GetByCode)

	company := router.Group("/company")
	company.Use(middleware.RequireAuth())
	{
		company.GET("", h.Profile)
		company.PUT("", h.UpdateProfile)
	}

	companies := router.Group("/companies")
	companies.Use(middleware.RequireAuth())
	{
		companies.GET("", h.List)
		companies.POST("", h.Create)
	}
}

// List returns all registered companies
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CompanyResponse}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyService.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, companies))
}

// Create registers a company with a freshly generated code
// @Summary      Create company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCompanyRequest  true  "Create Company Payload"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// GetByCode resolves a company by its generated code
// @Summary      Get company by code
// @Tags         companies
// @Produce      json
// @Param        code  path      string  true  "Company code"
// @Success      200   {object}  response.Response{data=service.CompanyResponse}
// @Failure      404   {object}  response.Response
// @Router       /companies/code/{code} [get]
func (h *CompanyHandler) GetByCode(c *gin.Context) {
	company, err := h.companyService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// Profile returns the acting user's company
// @Summary      Company profile
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      401  {object}  response.Response
// @Router       /company [get]
func (h *CompanyHandler) Profile(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	company, err := h.companyService.Profile(c.Request.Context(), actorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// UpdateProfile renames the acting user's company
// @Summary      Update company profile
// @Description  Renames the company. The generated code never changes after creation.
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateCompanyRequest  true  "Update Company Payload"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /company [put]
func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	actorID, ok := actor(c)
	if !ok {
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.UpdateProfile(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
