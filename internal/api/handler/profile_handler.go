package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ChannelProfile returns a channel with its subscription counts.
//
// @Summary      Channel profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Channel username"
// @Success      200  {object}  Envelope{data=domain.ChannelProfile}
// @Failure      400  {object}  ErrorEnvelope
// @Failure      401  {object}  ErrorEnvelope
// @Failure      404  {object}  ErrorEnvelope
// @Router       /users/c/{username} [get]
func (h *ProfileHandler) ChannelProfile(c echo.Context) error {
	viewerID := ""
	if user, err := currentUser(c); err == nil {
		viewerID = user.ID
	}

	profile, err := h.profiles.ChannelProfile(c.Request().Context(), c.Param("username"), viewerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

// WatchHistory returns the caller's watched videos, oldest first.
//
// @Summary      Watch history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]domain.WatchedVideo}
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/history [get]
func (h *ProfileHandler) WatchHistory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	videos, err := h.profiles.WatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, videos, "Watch history fetched successfully")
}
