package handlers

import (
	"errors"
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type CohortHandlers struct {
	cohortSvc services.CohortService
}

func NewCohortHandlers(cohortSvc services.CohortService) *CohortHandlers {
	return &CohortHandlers{cohortSvc: cohortSvc}
}

func (h *CohortHandlers) ListCohorts(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	cohorts, err := h.cohortSvc.List(c.Request().Context(), tc.TenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to list cohorts")
	}
	return c.JSON(http.StatusOK, cohorts)
}

func (h *CohortHandlers) CreateCohort(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateCohortRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	cohort, err := h.cohortSvc.Create(c.Request().Context(), tc.TenantID, tcActor(c), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, cohort)
}

func (h *CohortHandlers) DeleteCohort(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid cohort id")
	}

	if err := h.cohortSvc.Delete(c.Request().Context(), tc.TenantID, cohortID, tcActor(c)); err != nil {
		return common.SendServerError(c, "Failed to delete cohort")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

type cohortMemberRequest struct {
	EmployeeID uuid.UUID `json:"employee_id"`
}

func (h *CohortHandlers) AddMember(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid cohort id")
	}

	var req cohortMemberRequest
	if err := c.Bind(&req); err != nil || req.EmployeeID == uuid.Nil {
		return common.SendValidationError(c, "employee_id", "Invalid employee id")
	}

	if err := h.cohortSvc.AddMember(c.Request().Context(), tc.TenantID, cohortID, req.EmployeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Cohort")
		}
		return common.SendServerError(c, "Failed to add cohort member")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "added"})
}

func (h *CohortHandlers) RemoveMember(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid cohort id")
	}
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return common.SendValidationError(c, "employeeId", "Invalid employee id")
	}

	if err := h.cohortSvc.RemoveMember(c.Request().Context(), tc.TenantID, cohortID, employeeID); err != nil {
		return common.SendServerError(c, "Failed to remove cohort member")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CohortHandlers) ListMembers(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid cohort id")
	}

	ids, err := h.cohortSvc.MemberIDs(c.Request().Context(), tc.TenantID, cohortID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Cohort")
		}
		return common.SendServerError(c, "Failed to list cohort members")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"employee_ids": ids})
}
