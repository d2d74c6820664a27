package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

// UserHandler serves the administrative user management routes.
type UserHandler struct {
	service ports.AccountService
}

func NewUserHandler(service ports.AccountService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/auth/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/auth/users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	accounts, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(accounts))
}

// Get handles GET /api/auth/users/:userId.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  accountResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/auth/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{User: account})
}

type targetedOp func(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)

func (h *UserHandler) apply(c echo.Context, operation string, op targetedOp, message string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	account, err := op(c.Request().Context(), actor, c.Param("userId"))
	observe(operation, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userActionResponse{Message: message, User: toSummary(account)})
}

// Promote handles PATCH /api/auth/users/:userId/promote-to-admin.
//
// @Summary      Promote a user to admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userActionResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /api/auth/users/{userId}/promote-to-admin [patch]
func (h *UserHandler) Promote(c echo.Context) error {
	return h.apply(c, "promote", h.service.PromoteToAdmin, "User promoted to ADMIN successfully")
}

// Demote handles PATCH /api/auth/users/:userId/demote-to-user.
//
// @Summary      Demote an admin to user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userActionResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /api/auth/users/{userId}/demote-to-user [patch]
func (h *UserHandler) Demote(c echo.Context) error {
	return h.apply(c, "demote", h.service.DemoteToUser, "Admin demoted to USER successfully")
}

// Activate handles PATCH /api/auth/users/:userId/activate.
//
// @Summary      Activate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userActionResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/auth/users/{userId}/activate [patch]
func (h *UserHandler) Activate(c echo.Context) error {
	return h.apply(c, "activate", h.service.Activate, "User activated successfully")
}

// Deactivate handles PATCH /api/auth/users/:userId/deactivate.
//
// @Summary      Deactivate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userActionResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/auth/users/{userId}/deactivate [patch]
func (h *UserHandler) Deactivate(c echo.Context) error {
	return h.apply(c, "deactivate", h.service.Deactivate, "User deactivated successfully")
}

// Delete handles DELETE /api/auth/users/:userId.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  messageResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/auth/users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), actor, c.Param("userId"))
	observe("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
