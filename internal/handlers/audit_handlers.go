package handlers

import (
	"net/http"
	"strconv"
	"time"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/models"
	"traindesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuditHandlers struct {
	auditSvc services.AuditService
}

func NewAuditHandlers(auditSvc services.AuditService) *AuditHandlers {
	return &AuditHandlers{auditSvc: auditSvc}
}

// ListAuditLogs returns the tenant's audit trail, newest first. Filters come
// from query parameters; anything unparseable is a validation error rather
// than a silently ignored filter.
func (h *AuditHandlers) ListAuditLogs(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	filters := &models.AuditLogFilters{Limit: 50}

	if v := c.QueryParam("action"); v != "" {
		filters.Action = &v
	}
	if v := c.QueryParam("entity_type"); v != "" {
		filters.EntityType = &v
	}
	if v := c.QueryParam("entity_id"); v != "" {
		filters.EntityID = &v
	}
	if v := c.QueryParam("actor"); v != "" {
		actorID, err := uuid.Parse(v)
		if err != nil {
			return common.SendValidationError(c, "actor", "Invalid actor id")
		}
		filters.Actor = &actorID
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "start_date", "Dates must be RFC3339")
		}
		filters.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "end_date", "Dates must be RFC3339")
		}
		filters.EndDate = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return common.SendValidationError(c, "limit", "Limit must be a number")
		}
		filters.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return common.SendValidationError(c, "offset", "Offset must be a number")
		}
		filters.Offset = n
	}

	logs, err := h.auditSvc.List(c.Request().Context(), tc.TenantID, filters)
	if err != nil {
		return common.SendServerError(c, "Failed to fetch audit logs")
	}
	return c.JSON(http.StatusOK, logs)
}
