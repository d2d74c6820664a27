package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}

// SuperAdminOnly admits SUPER_ADMIN callers.
func SuperAdminOnly() echo.MiddlewareFunc {
	return RBAC(domain.RoleSuperAdmin)
}

// AdminOrAbove admits SUPER_ADMIN and ADMIN callers.
func AdminOrAbove() echo.MiddlewareFunc {
	return RBAC(domain.RoleSuperAdmin, domain.RoleAdmin)
}
