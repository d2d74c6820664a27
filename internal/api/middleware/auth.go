package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/api/metrics"
	"github.com/staffhub/user-management/internal/core/domain"
)

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// TokenVerifier resolves a bearer token into the caller's current identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.Actor, error)
}

// Auth verifies the bearer token and injects the caller's id and role into context.
// Verification failures are returned as domain errors for the central error handler.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			actor, err := verifier.VerifyToken(c.Request().Context(), strings.TrimSpace(parts[1]))
			metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(ContextUserID, actor.ID)
			c.Set(ContextRole, string(actor.Role))

			return next(c)
		}
	}
}

func verificationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrAccountMissing):
		return "missing_account"
	case errors.Is(err, domain.ErrAccountDeactivated):
		return "deactivated"
	default:
		return "error"
	}
}
