package handlers

import (
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/labstack/echo/v4"
)

type SearchHandlers struct {
	searchSvc services.SearchService
}

func NewSearchHandlers(searchSvc services.SearchService) *SearchHandlers {
	return &SearchHandlers{searchSvc: searchSvc}
}

// Search matches a term against course, module, and content titles within
// the tenant.
func (h *SearchHandlers) Search(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	term := c.QueryParam("q")
	results, err := h.searchSvc.Search(c.Request().Context(), tc.TenantID, term)
	if err != nil {
		return common.SendValidationError(c, "q", err.Error())
	}
	return c.JSON(http.StatusOK, results)
}
