package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupWindow is how long a watch of the same video by the same user
// is treated as a repeat.
const DefaultDedupWindow = 30 * time.Minute

// kv is the subset of the Redis client the dedup checker needs.
type kv interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// DedupChecker provides watch-event idempotency backed by Redis.
// Key format: watch:dedup:<user_id>:<video_id>
type DedupChecker struct {
	client kv
	window time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
// A non-positive window falls back to DefaultDedupWindow.
func NewDedupChecker(client kv, window time.Duration) *DedupChecker {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupChecker{client: client, window: window}
}

// IsDuplicate reports whether the user already watched the video inside the window.
func (d *DedupChecker) IsDuplicate(ctx context.Context, userID, videoID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(userID, videoID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the watch; the key expires after the window.
func (d *DedupChecker) Mark(ctx context.Context, userID, videoID string) error {
	if err := d.client.Set(ctx, d.key(userID, videoID), "1", d.window).Err(); err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(userID, videoID string) string {
	return fmt.Sprintf("watch:dedup:%s:%s", userID, videoID)
}
