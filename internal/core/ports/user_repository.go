package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a new user; duplicate username or email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsernameOrEmail matches either criterion; blank criteria are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)

	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces the stored token only if it still equals
	// expected. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id string, in UpdateDetailsInput) (*domain.User, error)
	UpdateImage(ctx context.Context, id string, kind domain.ImageKind, url string) (*domain.User, error)
}

// ProfileRepository runs the read-model aggregations over users,
// subscriptions and videos.
type ProfileRepository interface {
	// ChannelProfile resolves username (already lower-cased) and computes the
	// subscription counts and whether viewerID subscribes to it.
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	// WatchHistory returns the user's watched videos in stored order.
	WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error)
}
