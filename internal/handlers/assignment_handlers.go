package handlers

import (
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AssignmentHandlers struct {
	assignmentSvc services.AssignmentService
}

func NewAssignmentHandlers(assignmentSvc services.AssignmentService) *AssignmentHandlers {
	return &AssignmentHandlers{assignmentSvc: assignmentSvc}
}

// GetAssignments returns the course ids currently assigned to an employee.
func (h *AssignmentHandlers) GetAssignments(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return common.SendValidationError(c, "employeeId", "Invalid employee id")
	}

	courseIDs, err := h.assignmentSvc.Current(c.Request().Context(), tc.TenantID, employeeID)
	if err != nil {
		return common.SendServerError(c, "Failed to fetch assignments")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"course_ids": courseIDs})
}

type ReconcileRequest struct {
	CourseIDs []uuid.UUID `json:"course_ids"`
}

// ReconcileAssignments replaces an employee's assignment set with the desired
// one and returns the applied delta. Submitting the current set is a no-op.
func (h *AssignmentHandlers) ReconcileAssignments(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return common.SendValidationError(c, "employeeId", "Invalid employee id")
	}

	var req ReconcileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.assignmentSvc.Reconcile(c.Request().Context(), tc.TenantID, employeeID, tcActor(c), req.CourseIDs)
	if err != nil {
		return common.SendServerError(c, "Failed to update assignments")
	}
	return c.JSON(http.StatusOK, result)
}
