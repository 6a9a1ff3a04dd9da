package service

import (
	"context"
	"errors"
	"testing"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/infrastructure/db/memory"
)

func seedUser(t *testing.T, db *memory.DB, username string) *domain.User {
	t.Helper()
	u, err := db.Create(context.Background(), &domain.User{
		Username: username,
		Email:    username + "@x.com",
		FullName: username,
		Avatar:   "https://cdn.example.com/" + username + ".png",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func TestProfileService_ChannelProfile(t *testing.T) {
	db := memory.New()
	svc := NewProfileService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	db.AddSubscription(bob.ID, alice.ID)
	db.AddSubscription(carol.ID, alice.ID)
	db.AddSubscription(alice.ID, bob.ID)

	p, err := svc.ChannelProfile(context.Background(), " Alice ", bob.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if p.SubscribersCount != 2 || p.ChannelsSubscribedToCount != 1 || !p.IsSubscribed {
		t.Fatalf("unexpected profile: %+v", p)
	}

	p, err = svc.ChannelProfile(context.Background(), "alice", alice.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if p.IsSubscribed {
		t.Fatalf("a channel is not subscribed to itself")
	}
}

func TestProfileService_ChannelProfile_Errors(t *testing.T) {
	svc := NewProfileService(memory.New())

	if _, err := svc.ChannelProfile(context.Background(), "  ", ""); !errors.Is(err, domain.ErrUsernameRequired) {
		t.Fatalf("expected ErrUsernameRequired, got %v", err)
	}
	if _, err := svc.ChannelProfile(context.Background(), "ghost", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileService_WatchHistory(t *testing.T) {
	db := memory.New()
	svc := NewProfileService(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	first := db.AddVideo(domain.Video{Title: "first", OwnerID: bob.ID})
	second := db.AddVideo(domain.Video{Title: "second", OwnerID: bob.ID})

	history, err := svc.WatchHistory(ctx, alice.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", history)
	}

	for _, id := range []string{second, "deleted-video", first} {
		if err := db.AppendHistory(ctx, alice.ID, id); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err = svc.WatchHistory(ctx, alice.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Title != "second" || history[1].Title != "first" {
		t.Fatalf("history order not preserved: %s, %s", history[0].Title, history[1].Title)
	}
	if history[0].Owner == nil || history[0].Owner.Username != "bob" {
		t.Fatalf("owner not resolved: %+v", history[0].Owner)
	}
}
