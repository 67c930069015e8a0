package middleware

import (
	"traindesk/internal/common"
	"traindesk/internal/models"
	"traindesk/internal/services"

	"github.com/labstack/echo/v4"
)

const tenantContextKey = "tenant_context"

// TenantContextMiddleware resolves the :tenantSlug path parameter into a
// TenantContext and memoizes it on the echo context for the rest of the
// request. The cache lives and dies with the request; a revoked membership
// is seen on the very next request.
//
// Every denial is a 404. "Tenant you cannot access" and "tenant that does
// not exist" must be indistinguishable to the caller.
type TenantContextMiddleware struct {
	tenantCtxSvc services.TenantContextService
}

func NewTenantContextMiddleware(tenantCtxSvc services.TenantContextService) *TenantContextMiddleware {
	return &TenantContextMiddleware{tenantCtxSvc: tenantCtxSvc}
}

func (m *TenantContextMiddleware) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug := c.Param("tenantSlug")
			principal, _ := common.GetPrincipalFromContext(c.Request().Context())

			tc, err := m.resolveMemoized(c, slug, principal)
			if err != nil {
				// Dependency failure: generic not-found to the caller, the
				// specific error stays in the server logs via echo's logger.
				return common.SendNotFoundError(c, "Tenant")
			}
			if tc == nil {
				return common.SendNotFoundError(c, "Tenant")
			}

			c.Set(tenantContextKey, tc)
			return next(c)
		}
	}
}

// resolveMemoized resolves each (slug, principal) pair at most once per
// request, so every component rendering one page shares a single lookup.
func (m *TenantContextMiddleware) resolveMemoized(c echo.Context, slug string, principal *models.Profile) (*models.TenantContext, error) {
	memoKey := "tenant_resolve:" + slug
	if principal != nil {
		memoKey += ":" + principal.ID.String()
	}
	if cached, ok := c.Get(memoKey).(*models.TenantContext); ok {
		return cached, nil
	}

	tc, err := m.tenantCtxSvc.Resolve(c.Request().Context(), slug, principal)
	if err != nil {
		return nil, err
	}
	if tc != nil {
		c.Set(memoKey, tc)
	}
	return tc, nil
}

// GetTenantContext returns the tenant context resolved by the middleware.
func GetTenantContext(c echo.Context) (*models.TenantContext, bool) {
	tc, ok := c.Get(tenantContextKey).(*models.TenantContext)
	return tc, ok && tc != nil
}
