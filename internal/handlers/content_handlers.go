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

const maxUploadSize = 100 << 20 // 100 MiB

type ContentHandlers struct {
	contentSvc services.ContentService
}

func NewContentHandlers(contentSvc services.ContentService) *ContentHandlers {
	return &ContentHandlers{contentSvc: contentSvc}
}

func (h *ContentHandlers) CreateContent(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateContentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.contentSvc.Create(c.Request().Context(), tc.TenantID, tcActor(c), &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ContentHandlers) UpdateContent(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid content id")
	}

	var req services.UpdateContentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ID = itemID

	if err := h.contentSvc.Update(c.Request().Context(), tc.TenantID, tcActor(c), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Content item")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ContentHandlers) DeleteContent(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid content id")
	}

	if err := h.contentSvc.Delete(c.Request().Context(), tc.TenantID, itemID, tcActor(c)); err != nil {
		return common.SendServerError(c, "Failed to delete content item")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ContentHandlers) ListContent(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		return common.SendValidationError(c, "moduleId", "Invalid module id")
	}

	items, err := h.contentSvc.ListByModule(c.Request().Context(), tc.TenantID, moduleID)
	if err != nil {
		return common.SendServerError(c, "Failed to list content")
	}
	return c.JSON(http.StatusOK, items)
}

// AssignedContent lists a module's content for the employee viewer. Modules
// under courses the caller is not assigned to, or that are not published, are
// reported as not found.
func (h *ContentHandlers) AssignedContent(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	moduleID, err := uuid.Parse(c.Param("moduleId"))
	if err != nil {
		return common.SendValidationError(c, "moduleId", "Invalid module id")
	}

	items, err := h.contentSvc.AssignedModuleContent(c.Request().Context(), tc.TenantID, principal.ID, moduleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Module")
		}
		return common.SendServerError(c, "Failed to list content")
	}
	return c.JSON(http.StatusOK, items)
}

// SignedURL hands out a short-lived download link for a stored file. This
// endpoint sits outside the tenant route tree, so the access check happens in
// the service against the item's own tenant.
func (h *ContentHandlers) SignedURL(c echo.Context) error {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := uuid.Parse(c.QueryParam("content_item_id"))
	if err != nil {
		return common.SendValidationError(c, "content_item_id", "Invalid content item id")
	}

	url, err := h.contentSvc.SignedURL(c.Request().Context(), principal, itemID)
	if err != nil {
		if errors.Is(err, services.ErrNoAccess) {
			return common.SendNotFoundError(c, "Content item")
		}
		return common.SendServerError(c, "Failed to generate download link")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Upload receives a multipart file and stores it under the tenant's prefix.
// The returned storage path feeds a subsequent content item create.
func (h *ContentHandlers) Upload(c echo.Context) error {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	moduleID, err := uuid.Parse(c.FormValue("module_id"))
	if err != nil {
		return common.SendValidationError(c, "module_id", "Invalid module id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "File is required")
	}
	if fileHeader.Size > maxUploadSize {
		return common.SendValidationError(c, "file", "File exceeds the 100MB limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	storagePath, err := h.contentSvc.UploadFile(
		c.Request().Context(),
		tc.TenantID,
		moduleID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		src,
		fileHeader.Size,
	)
	if err != nil {
		return common.SendServerError(c, "Failed to store file")
	}

	return c.JSON(http.StatusCreated, map[string]string{"storage_path": storagePath})
}
