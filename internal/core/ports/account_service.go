package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// UpdateDetailsInput is a partial profile update; nil fields are left alone.
type UpdateDetailsInput struct {
	FullName *string
	Email    *string
}

// AccountService edits an authenticated user's own record.
type AccountService interface {
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpdateDetails(ctx context.Context, userID string, in UpdateDetailsInput) (*domain.User, error)
	UpdateImage(ctx context.Context, userID string, kind domain.ImageKind, localPath string) (*domain.User, error)
}

// ProfileService serves the aggregation read models.
type ProfileService interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error)
}
