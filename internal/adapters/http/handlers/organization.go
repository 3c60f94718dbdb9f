package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/dto"
	"github.com/jsamuelsen/licensing-mesh/internal/app"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

// OrganizationHandler handles the organization service endpoints.
type OrganizationHandler struct {
	service *app.OrganizationService
}

// NewOrganizationHandler creates a new organization handler.
func NewOrganizationHandler(service *app.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
	}
}

// OrganizationResponse is the HTTP response structure for an organization.
// Its shape is what the licensing service's clients decode.
type OrganizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

func toOrganizationResponse(o *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		ContactName:  o.ContactName,
		ContactEmail: o.ContactEmail,
		ContactPhone: o.ContactPhone,
	}
}

// Echo handles GET /v1/organizations/echo.
func (h *OrganizationHandler) Echo(c *gin.Context) {
	c.String(http.StatusOK, "organisations echo")
}

// ListOrganizations handles GET /v1/organizations/all.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.service.ListOrganizations(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	out := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		out = append(out, toOrganizationResponse(&orgs[i]))
	}

	c.JSON(http.StatusOK, out)
}

// GetOrganization handles GET /v1/organizations/:organizationId.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	var path organizationPath
	if err := dto.BindURIAndValidate(c, &path); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	org, err := h.service.GetOrganization(c.Request.Context(), path.OrganizationID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrganizationResponse(org))
}

// RegisterOrganizationRoutes registers the organization routes on the given router group.
func (h *OrganizationHandler) RegisterOrganizationRoutes(rg *gin.RouterGroup) {
	orgs := rg.Group("/organizations")
	orgs.GET("/echo", h.Echo)
	orgs.GET("/all", h.ListOrganizations)
	orgs.GET("/:organizationId", h.GetOrganization)
}
