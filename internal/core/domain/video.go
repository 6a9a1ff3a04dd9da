package domain

import "time"

// Video is the hosted media resource referenced from watch history.
type Video struct {
	ID          string    `json:"_id"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	OwnerID     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoOwner is the restricted projection of a user inlined into history.
type VideoOwner struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// WatchedVideo is one watch-history entry with its owner resolved. Owner is
// nil when the owning user no longer exists.
type WatchedVideo struct {
	Video
	Owner *VideoOwner `json:"owner,omitempty"`
}

// WatchEvent records that a user watched a video.
type WatchEvent struct {
	UserID    string
	VideoID   string
	WatchedAt time.Time
}
