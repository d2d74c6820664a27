package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/api/metrics"
	"github.com/staffhub/user-management/internal/core/ports"
)

type AuthHandler struct {
	authService    ports.AuthService
	accountService ports.AccountService
}

func NewAuthHandler(authService ports.AuthService, accountService ports.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

// RegisterSuperAdmin creates the bootstrap super admin account.
//
// @Summary      Register the bootstrap super admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Super admin details"
// @Success      201   {object}  userActionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register/super-admin [post]
func (h *AuthHandler) RegisterSuperAdmin(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountService.RegisterSuperAdmin(c.Request().Context(), toRegisterInput(req, ""))
	observe("register_super_admin", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userActionResponse{
		Message: "Super admin created successfully",
		User:    toSummary(account),
	})
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, account, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    toSummary(account),
	})
}

// RegisterUser creates a USER or ADMIN account. Super admin only.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerUserRequest  true  "User details; role defaults to USER"
// @Success      201   {object}  userActionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/auth/register/user [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountService.RegisterUser(c.Request().Context(), actor, toRegisterInput(req.registerRequest, req.Role))
	observe("register_user", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userActionResponse{
		Message: "User registered successfully",
		User:    toSummary(account),
	})
}
