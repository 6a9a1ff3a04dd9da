package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
)

// WatchDispatcher is the interface the handler uses to enqueue watch events.
type WatchDispatcher interface {
	Enqueue(ctx context.Context, event domain.WatchEvent) error
}

// WatchHandler handles watch-event ingestion.
type WatchHandler struct {
	dispatcher WatchDispatcher
	now        func() time.Time
}

// NewWatchHandler creates a WatchHandler backed by the given dispatcher.
func NewWatchHandler(dispatcher WatchDispatcher) *WatchHandler {
	return &WatchHandler{dispatcher: dispatcher, now: time.Now}
}

type watchRequest struct {
	VideoID string `param:"videoId" json:"videoId" validate:"required,mongodb"`
}

// Record handles POST /history/:videoId, enqueueing the event and returning 202.
//
// @Summary      Record a watched video
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      202  {object}  Envelope
// @Failure      400  {object}  ErrorEnvelope
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/history/{videoId} [post]
func (h *WatchHandler) Record(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	req := watchRequest{VideoID: c.Param("videoId")}
	if err := c.Validate(&req); err != nil {
		return err
	}

	event := domain.WatchEvent{UserID: user.ID, VideoID: req.VideoID, WatchedAt: h.now().UTC()}
	if err := h.dispatcher.Enqueue(c.Request().Context(), event); err != nil {
		return fmt.Errorf("enqueue watch event: %w", err)
	}
	return respond(c, http.StatusAccepted, emptyData{}, "Watch event accepted")
}
