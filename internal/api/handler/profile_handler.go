package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

const imageField = "profileImage"

// ProfileHandler serves the self-service profile routes.
type ProfileHandler struct {
	service       ports.AccountService
	maxImageBytes int64
}

func NewProfileHandler(service ports.AccountService, maxImageBytes int64) *ProfileHandler {
	return &ProfileHandler{service: service, maxImageBytes: maxImageBytes}
}

// Get handles GET /api/auth/profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/auth/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), actor, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{User: account})
}

// Update handles PATCH /api/auth/profile. Only the fields present in the body change.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/auth/profile [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.service.UpdateOwnProfile(c.Request().Context(), actor, toProfilePatch(req))
	observe("update_profile", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "Profile updated successfully", User: account})
}

// UploadImage handles PUT /api/auth/profile/image.
//
// @Summary      Upload own profile image
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        profileImage  formData  file  true  "Image file"
// @Success      200           {object}  accountResponse
// @Failure      400           {object}  errorResponse
// @Failure      401           {object}  errorResponse
// @Failure      413           {object}  errorResponse
// @Router       /api/auth/profile/image [put]
func (h *ProfileHandler) UploadImage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		return fmt.Errorf("%w: %s file is required", domain.ErrValidation, imageField)
	}
	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("profile image exceeds %d bytes", h.maxImageBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	// The declared content type is client controlled; sniff the leading bytes instead.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	account, err := h.service.UpdateProfileImage(c.Request().Context(), actor, ports.ImageUpload{
		Body:        io.MultiReader(bytes.NewReader(head), f),
		Size:        fh.Size,
		ContentType: http.DetectContentType(head),
		Filename:    fh.Filename,
	})
	observe("upload_image", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{Message: "Profile image updated successfully", User: account})
}
