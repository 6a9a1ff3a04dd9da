package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// WatchRepository implements ports.WatchRepository using MongoDB.
type WatchRepository struct {
	db *mongo.Database
}

// NewWatchRepository creates a new WatchRepository.
func NewWatchRepository(db *mongo.Database) ports.WatchRepository {
	return &WatchRepository{db: db}
}

func (r *WatchRepository) VideoExists(ctx context.Context, videoID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = r.db.Collection(collectionVideos).FindOne(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find video: %w", err)
	}
	return true, nil
}

// AppendHistory pushes the video onto the user's watch history and bumps the
// video's view counter.
func (r *WatchRepository) AppendHistory(ctx context.Context, userID, videoID string) error {
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return domain.ErrVideoNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.Collection(collectionUsers).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{
			"$push": bson.M{"watchHistory": vid},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("push watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}

	_, err = r.db.Collection(collectionVideos).UpdateOne(ctx,
		bson.M{"_id": vid},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}
