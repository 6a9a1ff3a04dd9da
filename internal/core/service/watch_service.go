package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

// DedupChecker abstracts the watch-event idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, userID, videoID string) (bool, error)
	Mark(ctx context.Context, userID, videoID string) error
}

// DedupRecorder observes deduplication decisions.
type DedupRecorder interface {
	ObserveDedup(hit bool)
}

type nopDedupRecorder struct{}

func (nopDedupRecorder) ObserveDedup(bool) {}

// WatchOption configures a WatchService.
type WatchOption func(*watchService)

// WithDedupRecorder reports every dedup hit or miss to r.
func WithDedupRecorder(r DedupRecorder) WatchOption {
	return func(s *watchService) {
		if r != nil {
			s.recorder = r
		}
	}
}

type watchService struct {
	watches  ports.WatchRepository
	dedup    DedupChecker
	recorder DedupRecorder
	log      zerolog.Logger
}

// NewWatchService returns a WatchService implementation.
func NewWatchService(watches ports.WatchRepository, dedup DedupChecker, log zerolog.Logger, opts ...WatchOption) ports.WatchService {
	s := &watchService{
		watches:  watches,
		dedup:    dedup,
		recorder: nopDedupRecorder{},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record deduplicates and persists a single watch event. The dedup key is
// only set once the history entry is written, so a failed write can be
// retried inside the window.
func (s *watchService) Record(ctx context.Context, ev domain.WatchEvent) error {
	isDup, err := s.dedup.IsDuplicate(ctx, ev.UserID, ev.VideoID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("dedup check failed, recording anyway")
	} else if isDup {
		s.recorder.ObserveDedup(true)
		s.log.Debug().Str("user_id", ev.UserID).Str("video_id", ev.VideoID).Msg("duplicate watch event skipped")
		return nil
	} else {
		s.recorder.ObserveDedup(false)
	}

	exists, err := s.watches.VideoExists(ctx, ev.VideoID)
	if err != nil {
		return fmt.Errorf("record watch: %w", err)
	}
	if !exists {
		return fmt.Errorf("record watch %s: %w", ev.VideoID, domain.ErrVideoNotFound)
	}

	if err := s.watches.AppendHistory(ctx, ev.UserID, ev.VideoID); err != nil {
		return fmt.Errorf("record watch: append history: %w", err)
	}

	if markErr := s.dedup.Mark(ctx, ev.UserID, ev.VideoID); markErr != nil {
		s.log.Warn().Err(markErr).Str("user_id", ev.UserID).Msg("failed to set dedup key")
	}

	s.log.Info().
		Str("user_id", ev.UserID).
		Str("video_id", ev.VideoID).
		Time("watched_at", ev.WatchedAt).
		Msg("watch event recorded")

	return nil
}
