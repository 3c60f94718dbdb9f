package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/dto"
	"github.com/jsamuelsen/licensing-mesh/internal/app"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

// LicenseHandler handles the licensing service endpoints.
type LicenseHandler struct {
	service *app.LicenseService
}

// NewLicenseHandler creates a new license handler.
func NewLicenseHandler(service *app.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		service: service,
	}
}

// LicenseResponse is the HTTP response structure for a license. The
// organization fields are only populated on enriched lookups.
type LicenseResponse struct {
	LicenseID        string `json:"licenseId"`
	OrganizationID   string `json:"organizationId"`
	ProductName      string `json:"productName"`
	LicenseType      string `json:"licenseType"`
	LicenseMax       int    `json:"licenseMax"`
	LicenseAllocated int    `json:"licenseAllocated"`
	Comment          string `json:"comment"`
	OrganizationName string `json:"organizationName"`
	ContactName      string `json:"contactName"`
	ContactEmail     string `json:"contactEmail"`
	ContactPhone     string `json:"contactPhone"`
}

func toLicenseResponse(l *domain.License) LicenseResponse {
	return LicenseResponse{
		LicenseID:        l.ID,
		OrganizationID:   l.OrganizationID,
		ProductName:      l.ProductName,
		LicenseType:      l.LicenseType,
		LicenseMax:       l.LicenseMax,
		LicenseAllocated: l.LicenseAllocated,
		Comment:          l.Comment,
		OrganizationName: l.OrganizationName,
		ContactName:      l.ContactName,
		ContactEmail:     l.ContactEmail,
		ContactPhone:     l.ContactPhone,
	}
}

func toLicenseResponses(licenses []domain.License) []LicenseResponse {
	out := make([]LicenseResponse, 0, len(licenses))
	for i := range licenses {
		out = append(out, toLicenseResponse(&licenses[i]))
	}

	return out
}

type organizationPath struct {
	OrganizationID string `uri:"organizationId" validate:"identifier,max=128"`
}

type licensePath struct {
	LicenseID string `uri:"licenseId" validate:"identifier,max=128"`
}

type licenseClientPath struct {
	LicenseID  string `uri:"licenseId"  validate:"identifier,max=128"`
	ClientType string `uri:"clientType" validate:"max=32"`
}

// Echo handles GET /v1/licenses/.
func (h *LicenseHandler) Echo(c *gin.Context) {
	c.String(http.StatusOK, "echo")
}

// ListLicenses handles GET /v1/licenses/all.
func (h *LicenseHandler) ListLicenses(c *gin.Context) {
	licenses, err := h.service.ListLicenses(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLicenseResponses(licenses))
}

// ListLicensesByOrganization handles GET /v1/licenses/:organizationId.
// An organization without licenses yields an empty array.
func (h *LicenseHandler) ListLicensesByOrganization(c *gin.Context) {
	var path organizationPath
	if err := dto.BindURIAndValidate(c, &path); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	licenses, err := h.service.ListLicensesByOrganization(c.Request.Context(), path.OrganizationID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLicenseResponses(licenses))
}

// GetLicense handles GET /v1/licenses/license/:licenseId.
//
// @Summary Get a license by ID
// @Tags licenses
// @Produce json
// @Param licenseId path string true "License ID"
// @Success 200 {object} LicenseResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/licenses/license/{licenseId} [get]
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	var path licensePath
	if err := dto.BindURIAndValidate(c, &path); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	license, err := h.service.GetLicense(c.Request.Context(), path.LicenseID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLicenseResponse(license))
}

// GetLicenseWithClient handles GET /v1/licenses/license/:licenseId/:clientType.
// clientType selects the dispatch strategy (rest, feign, discovery) and
// unknown values use discovery. A failed enrichment still answers 200 with
// the fallback license.
//
// @Summary Get a license enriched with its organization
// @Tags licenses
// @Produce json
// @Param licenseId path string true "License ID"
// @Param clientType path string true "rest, feign or discovery"
// @Success 200 {object} LicenseResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/licenses/license/{licenseId}/{clientType} [get]
func (h *LicenseHandler) GetLicenseWithClient(c *gin.Context) {
	var path licenseClientPath
	if err := dto.BindURIAndValidate(c, &path); err != nil {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	strategy := domain.ParseDispatchStrategy(path.ClientType)

	license, err := h.service.GetLicenseWithOrganization(c.Request.Context(), path.LicenseID, strategy)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLicenseResponse(license))
}

// RegisterLicenseRoutes registers the licensing routes on the given router group.
// "license" is a reserved path segment and cannot be used as an organization id.
func (h *LicenseHandler) RegisterLicenseRoutes(rg *gin.RouterGroup) {
	licenses := rg.Group("/licenses")
	licenses.GET("/", h.Echo)
	licenses.GET("/all", h.ListLicenses)
	licenses.GET("/:organizationId", h.ListLicensesByOrganization)
	licenses.GET("/license/:licenseId", h.GetLicense)
	licenses.GET("/license/:licenseId/:clientType", h.GetLicenseWithClient)
}
