package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/api/middleware"
	"github.com/staffhub/user-management/internal/core/domain"
)

// ctxActor extracts the caller identity injected by the Auth middleware.
// Both id and a known role must be present; otherwise the middleware did not run.
func ctxActor(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	raw, _ := c.Get(middleware.ContextRole).(string)
	role, ok := domain.ParseRole(raw)
	if id == "" || !ok {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{ID: id, Role: role}, nil
}
