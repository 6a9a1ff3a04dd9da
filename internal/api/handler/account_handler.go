package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

type AccountHandler struct {
	accounts  ports.AccountService
	uploadDir string
}

func NewAccountHandler(accounts ports.AccountService, uploadDir string) *AccountHandler {
	return &AccountHandler{accounts: accounts, uploadDir: uploadDir}
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required"`
}

type updateDetailsRequest struct {
	FullName *string `json:"fullName" form:"fullName"`
	Email    *string `json:"email"    form:"email"    validate:"omitempty,email"`
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Router       /users/change-password [post]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.accounts.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword)
	observeAuth("change_password", err)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, emptyData{}, "Password changed successfully")
}

// CurrentUser returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/current-user [get]
func (h *AccountHandler) CurrentUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "User fetched successfully")
}

// UpdateDetails changes the full name and/or email.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateDetailsRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Failure      409   {object}  ErrorEnvelope
// @Router       /users/update-user-details [patch]
func (h *AccountHandler) UpdateDetails(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateDetails(c.Request().Context(), user.ID, ports.UpdateDetailsInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar replaces the avatar image.
//
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      400  {object}  ErrorEnvelope
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/avatar [patch]
func (h *AccountHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, domain.ImageAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the cover image.
//
// @Summary      Update cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage  formData  file  true  "Cover image"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      400  {object}  ErrorEnvelope
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/cover-image [patch]
func (h *AccountHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, domain.ImageCoverImage, "Cover image updated successfully")
}

func (h *AccountHandler) updateImage(c echo.Context, kind domain.ImageKind, message string) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	path, err := stageFile(c, string(kind), h.uploadDir)
	if err != nil {
		return err
	}
	defer discard(path)

	updated, err := h.accounts.UpdateImage(c.Request().Context(), user.ID, kind, path)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, message)
}
