package handlers

import (
	"errors"
	"io"
	"net/http"

	"traindesk/internal/common"
	"traindesk/internal/middleware"
	"traindesk/internal/services"

	"github.com/labstack/echo/v4"
)

const maxImportSize = 10 << 20 // 10 MiB of JSON

type ImportHandlers struct {
	importSvc services.ImportService
}

func NewImportHandlers(importSvc services.ImportService) *ImportHandlers {
	return &ImportHandlers{importSvc: importSvc}
}

// BulkImport loads whole course trees from a JSON document. A mid-import
// failure returns the counts created before the failure; nothing is rolled
// back.
func (h *ImportHandlers) BulkImport(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize))
	if err != nil {
		return common.SendClientError(c, "Failed to read request body")
	}

	stats, err := h.importSvc.Import(c.Request().Context(), tc.TenantID, tcActor(c), raw)
	if err != nil {
		var impErr *services.ImportError
		if errors.As(err, &impErr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   impErr.Error(),
				"partial": impErr.Stats,
			})
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, stats)
}
