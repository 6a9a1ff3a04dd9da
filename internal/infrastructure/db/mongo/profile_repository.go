package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

const (
	collectionSubscriptions = "subscriptions"
	collectionVideos        = "videos"
)

// ProfileRepository serves the aggregation read models over users,
// subscriptions and videos.
type ProfileRepository struct {
	users *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{users: db.Collection(collectionUsers)}
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

type channelProfileDoc struct {
	ID                        primitive.ObjectID `bson:"_id"`
	FullName                  string             `bson:"fullName"`
	Username                  string             `bson:"username"`
	Email                     string             `bson:"email"`
	Avatar                    string             `bson:"avatar"`
	CoverImage                string             `bson:"coverImage"`
	SubscribersCount          int                `bson:"subscribersCount"`
	ChannelsSubscribedToCount int                `bson:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"isSubscribed"`
}

type videoOwnerDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	FullName string             `bson:"fullName"`
	Username string             `bson:"username"`
	Avatar   string             `bson:"avatar"`
}

type watchedVideoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	VideoFile   string             `bson:"videoFile"`
	Thumbnail   string             `bson:"thumbnail"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"isPublished"`
	Owner       *videoOwnerDoc     `bson:"owner,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type historyDoc struct {
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	Videos       []watchedVideoDoc    `bson:"videos"`
}

func channelProfilePipeline(username string, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionSubscriptions,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionSubscriptions,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":          bson.M{"$size": "$subscribers"},
			"channelsSubscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"fullName":                  1,
			"username":                  1,
			"email":                     1,
			"avatar":                    1,
			"coverImage":                1,
			"subscribersCount":          1,
			"channelsSubscribedToCount": 1,
			"isSubscribed":              1,
		}}},
	}
}

func watchHistoryPipeline(user primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": user}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionVideos,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "videos",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         collectionUsers,
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{"fullName": 1, "username": 1, "avatar": 1}},
					},
				}},
				bson.M{"$addFields": bson.M{"owner": bson.M{"$first": "$owner"}}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"watchHistory": 1, "videos": 1}}},
	}
}

// ChannelProfile resolves a channel by username with its subscription counts.
// viewerID may be empty for anonymous callers.
func (r *ProfileRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	viewer := primitive.NilObjectID
	if oid, err := primitive.ObjectIDFromHex(viewerID); err == nil {
		viewer = oid
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Aggregate(ctx, channelProfilePipeline(username, viewer))
	if err != nil {
		return nil, fmt.Errorf("channel profile aggregate: %w", err)
	}
	var docs []channelProfileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("channel profile decode: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrChannelNotFound
	}

	d := docs[0]
	return &domain.ChannelProfile{
		ID:                        d.ID.Hex(),
		FullName:                  d.FullName,
		Username:                  d.Username,
		Email:                     d.Email,
		Avatar:                    d.Avatar,
		CoverImage:                d.CoverImage,
		SubscribersCount:          d.SubscribersCount,
		ChannelsSubscribedToCount: d.ChannelsSubscribedToCount,
		IsSubscribed:              d.IsSubscribed,
	}, nil
}

// WatchHistory returns the user's watched videos in history order. $lookup
// does not preserve the order of the local array, so the result is re-sorted
// here; ids whose video no longer exists are skipped.
func (r *ProfileRepository) WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Aggregate(ctx, watchHistoryPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("watch history aggregate: %w", err)
	}
	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("watch history decode: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return orderByHistory(docs[0].WatchHistory, docs[0].Videos), nil
}

func orderByHistory(history []primitive.ObjectID, videos []watchedVideoDoc) []domain.WatchedVideo {
	byID := make(map[primitive.ObjectID]watchedVideoDoc, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	out := make([]domain.WatchedVideo, 0, len(history))
	for _, id := range history {
		v, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, toWatchedVideo(v))
	}
	return out
}

func toWatchedVideo(v watchedVideoDoc) domain.WatchedVideo {
	wv := domain.WatchedVideo{
		Video: domain.Video{
			ID:          v.ID.Hex(),
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Title:       v.Title,
			Description: v.Description,
			Duration:    v.Duration,
			Views:       v.Views,
			IsPublished: v.IsPublished,
			CreatedAt:   v.CreatedAt.UTC(),
			UpdatedAt:   v.UpdatedAt.UTC(),
		},
	}
	if v.Owner != nil {
		wv.OwnerID = v.Owner.ID.Hex()
		wv.Owner = &domain.VideoOwner{
			ID:       v.Owner.ID.Hex(),
			FullName: v.Owner.FullName,
			Username: v.Owner.Username,
			Avatar:   v.Owner.Avatar,
		}
	}
	return wv
}
