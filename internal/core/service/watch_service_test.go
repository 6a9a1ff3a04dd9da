package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
	"github.com/videotube/account-service/internal/infrastructure/db/memory"
)

// memDedup is an in-process DedupChecker; err forces every call to fail.
type memDedup struct {
	seen map[string]bool
	err  error
}

func newMemDedup() *memDedup { return &memDedup{seen: map[string]bool{}} }

func (d *memDedup) IsDuplicate(_ context.Context, userID, videoID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.seen[userID+":"+videoID], nil
}

func (d *memDedup) Mark(_ context.Context, userID, videoID string) error {
	if d.err != nil {
		return d.err
	}
	d.seen[userID+":"+videoID] = true
	return nil
}

func TestWatchService_Record(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	videoID := db.AddVideo(domain.Video{Title: "clip", OwnerID: alice.ID})
	svc := NewWatchService(db, newMemDedup(), zerolog.Nop())

	ev := domain.WatchEvent{UserID: alice.ID, VideoID: videoID, WatchedAt: time.Now()}
	if err := svc.Record(ctx, ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Second view inside the window is dropped.
	if err := svc.Record(ctx, ev); err != nil {
		t.Fatalf("record duplicate: %v", err)
	}

	stored, _ := db.FindByID(ctx, alice.ID)
	if len(stored.WatchHistory) != 1 || stored.WatchHistory[0] != videoID {
		t.Fatalf("unexpected history: %v", stored.WatchHistory)
	}
}

func TestWatchService_Record_UnknownVideo(t *testing.T) {
	db := memory.New()
	alice := seedUser(t, db, "alice")
	svc := NewWatchService(db, newMemDedup(), zerolog.Nop())

	err := svc.Record(context.Background(), domain.WatchEvent{UserID: alice.ID, VideoID: "missing"})
	if !errors.Is(err, domain.ErrVideoNotFound) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
}

func TestWatchService_Record_DedupUnavailable(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	videoID := db.AddVideo(domain.Video{Title: "clip"})
	dedup := newMemDedup()
	dedup.err = errors.New("redis down")
	svc := NewWatchService(db, dedup, zerolog.Nop())

	ev := domain.WatchEvent{UserID: alice.ID, VideoID: videoID}
	for i := 0; i < 2; i++ {
		if err := svc.Record(ctx, ev); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	stored, _ := db.FindByID(ctx, alice.ID)
	if len(stored.WatchHistory) != 2 {
		t.Fatalf("without dedup every event is recorded, got %v", stored.WatchHistory)
	}
}

// flakyWatches fails the first AppendHistory call and counts the rest.
type flakyWatches struct {
	ports.WatchRepository
	failures int
	appends  int
}

func (w *flakyWatches) VideoExists(context.Context, string) (bool, error) { return true, nil }

func (w *flakyWatches) AppendHistory(context.Context, string, string) error {
	if w.failures > 0 {
		w.failures--
		return errors.New("mongo down")
	}
	w.appends++
	return nil
}

func TestWatchService_Record_RetryAfterFailedAppend(t *testing.T) {
	ctx := context.Background()
	watches := &flakyWatches{failures: 1}
	dedup := newMemDedup()
	svc := NewWatchService(watches, dedup, zerolog.Nop())
	ev := domain.WatchEvent{UserID: "u1", VideoID: "v1"}

	if err := svc.Record(ctx, ev); err == nil {
		t.Fatalf("expected the first record to fail")
	}
	if dedup.seen["u1:v1"] {
		t.Fatalf("dedup key must not be set when the append failed")
	}

	if err := svc.Record(ctx, ev); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if watches.appends != 1 {
		t.Fatalf("expected the retry to be recorded, got %d appends", watches.appends)
	}
	if !dedup.seen["u1:v1"] {
		t.Fatalf("dedup key must be set after a successful append")
	}
}

type countingRecorder struct{ hits, misses int }

func (r *countingRecorder) ObserveDedup(hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

func TestWatchService_Record_ReportsDedupDecisions(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	videoID := db.AddVideo(domain.Video{Title: "clip"})
	rec := &countingRecorder{}
	svc := NewWatchService(db, newMemDedup(), zerolog.Nop(), WithDedupRecorder(rec))

	ev := domain.WatchEvent{UserID: alice.ID, VideoID: videoID}
	for i := 0; i < 2; i++ {
		if err := svc.Record(ctx, ev); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if rec.misses != 1 || rec.hits != 1 {
		t.Fatalf("expected one miss and one hit, got %+v", rec)
	}
}
