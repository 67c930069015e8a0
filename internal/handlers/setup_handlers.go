package handlers

import (
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/labstack/echo/v4"
)

type SetupHandlers struct {
	setupSvc services.SetupService
}

func NewSetupHandlers(setupSvc services.SetupService) *SetupHandlers {
	return &SetupHandlers{setupSvc: setupSvc}
}

// CreateTenant founds a tenant for the logged-in user and makes them owner.
func (h *SetupHandlers) CreateTenant(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.setupSvc.CreateFirstTenant(c.Request().Context(), principal, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"tenant":   tenant,
		"redirect": "/t/" + tenant.Slug + "/admin",
	})
}

// UpdateTenant handles the admin settings page: rename, and owner-only
// active toggling.
func (h *SetupHandlers) UpdateTenant(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tenant, err := h.setupSvc.UpdateTenant(c.Request().Context(), tc, tcActor(c), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, tenant)
}
