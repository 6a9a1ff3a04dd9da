package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/videotube/account-service/internal/core/domain"
)

func TestOrderByHistory(t *testing.T) {
	a, b, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	owner := primitive.NewObjectID()

	videos := []watchedVideoDoc{
		{ID: a, Title: "a", Owner: &videoOwnerDoc{ID: owner, Username: "bob"}},
		{ID: b, Title: "b"},
	}

	got := orderByHistory([]primitive.ObjectID{b, gone, a, b}, videos)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Title != "b" || got[1].Title != "a" || got[2].Title != "b" {
		t.Fatalf("order not preserved: %s %s %s", got[0].Title, got[1].Title, got[2].Title)
	}
	if got[1].Owner == nil || got[1].Owner.Username != "bob" || got[1].OwnerID != owner.Hex() {
		t.Fatalf("owner not mapped: %+v", got[1].Owner)
	}
	if got[0].Owner != nil {
		t.Fatalf("video without owner must have nil owner")
	}
}

func TestOrderByHistory_Empty(t *testing.T) {
	got := orderByHistory(nil, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestChannelProfilePipeline_UsesViewer(t *testing.T) {
	viewer := primitive.NewObjectID()
	p := channelProfilePipeline("alice", viewer)
	if len(p) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(p))
	}

	add := p[3][0].Value.(bson.M)
	cond := add["isSubscribed"].(bson.M)["$cond"].(bson.M)
	in := cond["if"].(bson.M)["$in"].(bson.A)
	if in[0] != viewer {
		t.Fatalf("isSubscribed must test the viewer id, got %v", in[0])
	}
}

func TestProfileRepository_ChannelProfile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "fullName", Value: "Alice"},
			{Key: "subscribersCount", Value: int32(2)},
			{Key: "channelsSubscribedToCount", Value: int32(1)},
			{Key: "isSubscribed", Value: true},
		}))

		repo := NewProfileRepository(mt.DB)
		p, err := repo.ChannelProfile(context.Background(), "alice", primitive.NewObjectID().Hex())
		if err != nil {
			mt.Fatalf("channel profile: %v", err)
		}
		if p.ID != id.Hex() || p.SubscribersCount != 2 || p.ChannelsSubscribedToCount != 1 || !p.IsSubscribed {
			mt.Fatalf("unexpected profile: %+v", p)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		repo := NewProfileRepository(mt.DB)
		if _, err := repo.ChannelProfile(context.Background(), "ghost", ""); !errors.Is(err, domain.ErrChannelNotFound) {
			mt.Fatalf("expected ErrChannelNotFound, got %v", err)
		}
	})
}

func TestProfileRepository_WatchHistory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes owners in history order", func(mt *mtest.T) {
		user := primitive.NewObjectID()
		first, second, deleted := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		owner := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: user},
			{Key: "watchHistory", Value: bson.A{second, deleted, first}},
			{Key: "videos", Value: bson.A{
				bson.D{
					{Key: "_id", Value: first},
					{Key: "title", Value: "first"},
					{Key: "views", Value: int64(7)},
					{Key: "owner", Value: bson.D{
						{Key: "_id", Value: owner},
						{Key: "fullName", Value: "Bob Builder"},
						{Key: "username", Value: "bob"},
						{Key: "avatar", Value: "https://cdn.example.com/bob.png"},
					}},
				},
				bson.D{
					{Key: "_id", Value: second},
					{Key: "title", Value: "second"},
				},
			}},
		}))

		repo := NewProfileRepository(mt.DB)
		got, err := repo.WatchHistory(context.Background(), user.Hex())
		if err != nil {
			mt.Fatalf("watch history: %v", err)
		}
		if len(got) != 2 {
			mt.Fatalf("expected 2 videos, got %d", len(got))
		}
		if got[0].ID != second.Hex() || got[1].ID != first.Hex() {
			mt.Fatalf("history order not kept: %s %s", got[0].Title, got[1].Title)
		}
		if got[0].Owner != nil {
			mt.Fatalf("video without owner must have nil owner")
		}
		o := got[1].Owner
		if o == nil || o.ID != owner.Hex() || o.Username != "bob" || o.FullName != "Bob Builder" || o.Avatar != "https://cdn.example.com/bob.png" {
			mt.Fatalf("owner not inlined: %+v", o)
		}
		if got[1].Views != 7 || got[1].OwnerID != owner.Hex() {
			mt.Fatalf("unexpected video: %+v", got[1].Video)
		}
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		repo := NewProfileRepository(mt.DB)
		if _, err := repo.WatchHistory(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		repo := NewUserRepository(mt.DB)
		_, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "alice@x.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		if _, err := repo.FindByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("decodes document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		watched := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "refreshToken", Value: "rt"},
			{Key: "watchHistory", Value: bson.A{watched}},
		}))

		repo := NewUserRepository(mt.DB)
		u, err := repo.FindByID(context.Background(), id.Hex())
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if u.PasswordHash != "hash" || u.RefreshToken != "rt" {
			mt.Fatalf("secrets not decoded: %+v", u)
		}
		if len(u.WatchHistory) != 1 || u.WatchHistory[0] != watched.Hex() {
			mt.Fatalf("unexpected history: %v", u.WatchHistory)
		}
	})
}
