package middleware

import (
	"traindesk/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireManager gates the admin route tree. Non-managing roles get the same
// 404 as a missing tenant; admin surfaces are not confirmed to exist.
func RequireManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tc, ok := GetTenantContext(c)
			if !ok || !tc.CanManage() {
				return common.SendNotFoundError(c, "Tenant")
			}
			return next(c)
		}
	}
}

// RequireAuthenticated gates routes that need a principal but no tenant.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetPrincipalFromContext(c.Request().Context()); !ok {
				return common.SendUnauthorizedError(c)
			}
			return next(c)
		}
	}
}
