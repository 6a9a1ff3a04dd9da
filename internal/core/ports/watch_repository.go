package ports

import "context"

// WatchRepository handles watch-history writes and the video lookups they need.
type WatchRepository interface {
	VideoExists(ctx context.Context, videoID string) (bool, error)

	// AppendHistory pushes videoID onto the user's watch history and counts
	// one view on the video. The two writes are independent; there is no
	// transaction spanning them.
	AppendHistory(ctx context.Context, userID, videoID string) error
}
