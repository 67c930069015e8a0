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

// CourseHandlers serves both route trees over the course catalog: the admin
// CRUD surface and the employee read surface. The tenant id always comes from
// the resolved tenant context, never from the payload.
type CourseHandlers struct {
	courseSvc services.CourseService
}

func NewCourseHandlers(courseSvc services.CourseService) *CourseHandlers {
	return &CourseHandlers{courseSvc: courseSvc}
}

func (h *CourseHandlers) CreateCourse(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateCourseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	actor := tcActor(c)
	course, err := h.courseSvc.Create(c.Request().Context(), tc.TenantID, actor, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *CourseHandlers) UpdateCourse(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid course id")
	}

	var req services.UpdateCourseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ID = courseID

	course, err := h.courseSvc.Update(c.Request().Context(), tc.TenantID, tcActor(c), &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Course")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandlers) DeleteCourse(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid course id")
	}

	if err := h.courseSvc.Delete(c.Request().Context(), tc.TenantID, courseID, tcActor(c)); err != nil {
		return common.SendServerError(c, "Failed to delete course")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CourseHandlers) ListCourses(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	courses, err := h.courseSvc.List(c.Request().Context(), tc.TenantID)
	if err != nil {
		return common.SendServerError(c, "Failed to list courses")
	}
	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandlers) GetCourse(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid course id")
	}

	course, err := h.courseSvc.Get(c.Request().Context(), tc.TenantID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Course")
		}
		return common.SendServerError(c, "Failed to fetch course")
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandlers) CreateModule(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateModuleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	module, err := h.courseSvc.CreateModule(c.Request().Context(), tc.TenantID, tcActor(c), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, module)
}

func (h *CourseHandlers) DeleteModule(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid module id")
	}

	if err := h.courseSvc.DeleteModule(c.Request().Context(), tc.TenantID, moduleID, tcActor(c)); err != nil {
		return common.SendServerError(c, "Failed to delete module")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CourseHandlers) ListModules(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		return common.SendValidationError(c, "courseId", "Invalid course id")
	}

	modules, err := h.courseSvc.ListModules(c.Request().Context(), tc.TenantID, courseID)
	if err != nil {
		return common.SendServerError(c, "Failed to list modules")
	}
	return c.JSON(http.StatusOK, modules)
}

// MyCourses is the employee catalog: published courses assigned to the caller.
func (h *CourseHandlers) MyCourses(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	courses, err := h.courseSvc.AssignedCourses(c.Request().Context(), tc.TenantID, principal.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to list courses")
	}
	return c.JSON(http.StatusOK, courses)
}

// CourseDetail returns a course plus its ordered modules for the viewer page.
// Unassigned or unpublished courses come back as not found.
func (h *CourseHandlers) CourseDetail(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid course id")
	}

	detail, err := h.courseSvc.CourseDetail(c.Request().Context(), tc.TenantID, principal.ID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Course")
		}
		return common.SendServerError(c, "Failed to fetch course")
	}
	return c.JSON(http.StatusOK, detail)
}

// tcActor returns the principal's id for audit attribution, nil when the
// request is somehow unauthenticated.
func tcActor(c echo.Context) *uuid.UUID {
	id, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return nil
	}
	return &id
}
