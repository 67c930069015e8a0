package handlers

import (
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EmployeeHandlers struct {
	employeeSvc services.EmployeeService
}

func NewEmployeeHandlers(employeeSvc services.EmployeeService) *EmployeeHandlers {
	return &EmployeeHandlers{employeeSvc: employeeSvc}
}

// CreateEmployee provisions an employee account with a temporary password.
// The account carries a forced reset, so the temp password only ever reaches
// the password change page.
func (h *EmployeeHandlers) CreateEmployee(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	profile, err := h.employeeSvc.Create(c.Request().Context(), tc.TenantID, tcActor(c), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, profile)
}

// DeactivateEmployee revokes the employee's membership. The profile itself is
// untouched; they simply stop being a member of this tenant.
func (h *EmployeeHandlers) DeactivateEmployee(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return common.SendValidationError(c, "employeeId", "Invalid employee id")
	}

	if err := h.employeeSvc.Deactivate(c.Request().Context(), tc.TenantID, employeeID, tcActor(c)); err != nil {
		return common.SendServerError(c, "Failed to deactivate employee")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *EmployeeHandlers) ListEmployees(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	employees, err := h.employeeSvc.List(c.Request().Context(), tc.TenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to list employees")
	}
	return c.JSON(http.StatusOK, employees)
}
