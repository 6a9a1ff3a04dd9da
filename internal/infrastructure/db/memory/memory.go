// Package memory implements the repository ports in process memory for
// tests. It mirrors the semantics of the Mongo adapter,
// including the aggregation read models.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// DB holds users, subscriptions and videos.
type DB struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	subscriptions []domain.Subscription
	videos        map[string]*domain.Video
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users:  make(map[string]*domain.User),
		videos: make(map[string]*domain.Video),
	}
}

// Ensure interfaces are met.
var _ ports.UserRepository = (*DB)(nil)
var _ ports.ProfileRepository = (*DB)(nil)
var _ ports.WatchRepository = (*DB)(nil)

func newID() string {
	return primitive.NewObjectID().Hex()
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.WatchHistory = append([]string{}, u.WatchHistory...)
	return &c
}

// --- UserRepository ---

func (db *DB) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	c := cloneUser(user)
	if c.ID == "" {
		c.ID = newID()
	}
	db.users[c.ID] = c
	return cloneUser(c), nil
}

func (db *DB) FindByID(_ context.Context, id string) (*domain.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (db *DB) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (db *DB) SetRefreshToken(_ context.Context, id, token string) error {
	return db.update(id, func(u *domain.User) error {
		u.RefreshToken = token
		return nil
	})
}

func (db *DB) SwapRefreshToken(_ context.Context, id, expected, next string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok || u.RefreshToken != expected {
		return false, nil
	}
	u.RefreshToken = next
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (db *DB) ClearRefreshToken(_ context.Context, id string) error {
	return db.update(id, func(u *domain.User) error {
		u.RefreshToken = ""
		return nil
	})
}

func (db *DB) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return db.update(id, func(u *domain.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (db *DB) UpdateDetails(_ context.Context, id string, in ports.UpdateDetailsInput) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil {
		for otherID, other := range db.users {
			if otherID != id && other.Email == *in.Email {
				return nil, domain.ErrUserExists
			}
		}
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (db *DB) UpdateImage(_ context.Context, id string, kind domain.ImageKind, url string) (*domain.User, error) {
	var out *domain.User
	err := db.update(id, func(u *domain.User) error {
		switch kind {
		case domain.ImageCoverImage:
			u.CoverImage = url
		default:
			u.Avatar = url
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

func (db *DB) update(id string, fn func(u *domain.User) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Seeding for collaborator collections ---

// AddSubscription records a subscriber → channel edge.
func (db *DB) AddSubscription(subscriberID, channelID string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.subscriptions = append(db.subscriptions, domain.Subscription{
		ID:         newID(),
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  time.Now().UTC(),
	})
}

// AddVideo stores a video and returns its id.
func (db *DB) AddVideo(v domain.Video) string {
	db.mu.Lock()
	defer db.mu.Unlock()

	if v.ID == "" {
		v.ID = newID()
	}
	db.videos[v.ID] = &v
	return v.ID
}

// --- ProfileRepository ---

func (db *DB) ChannelProfile(_ context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var channel *domain.User
	for _, u := range db.users {
		if u.Username == username {
			channel = u
			break
		}
	}
	if channel == nil {
		return nil, domain.ErrChannelNotFound
	}

	p := &domain.ChannelProfile{
		ID:         channel.ID,
		FullName:   channel.FullName,
		Username:   channel.Username,
		Email:      channel.Email,
		Avatar:     channel.Avatar,
		CoverImage: channel.CoverImage,
	}
	for _, s := range db.subscriptions {
		if s.Channel == channel.ID {
			p.SubscribersCount++
			if viewerID != "" && s.Subscriber == viewerID {
				p.IsSubscribed = true
			}
		}
		if s.Subscriber == channel.ID {
			p.ChannelsSubscribedToCount++
		}
	}
	return p, nil
}

func (db *DB) WatchHistory(_ context.Context, userID string) ([]domain.WatchedVideo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	out := make([]domain.WatchedVideo, 0, len(u.WatchHistory))
	for _, id := range u.WatchHistory {
		v, ok := db.videos[id]
		if !ok {
			continue
		}
		wv := domain.WatchedVideo{Video: *v}
		if owner, ok := db.users[v.OwnerID]; ok {
			wv.Owner = &domain.VideoOwner{
				ID:       owner.ID,
				FullName: owner.FullName,
				Username: owner.Username,
				Avatar:   owner.Avatar,
			}
		}
		out = append(out, wv)
	}
	return out, nil
}

// --- WatchRepository ---

func (db *DB) VideoExists(_ context.Context, videoID string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.videos[videoID]
	return ok, nil
}

func (db *DB) AppendHistory(_ context.Context, userID, videoID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.WatchHistory = append(u.WatchHistory, videoID)
	if v, ok := db.videos[videoID]; ok {
		v.Views++
	}
	return nil
}
