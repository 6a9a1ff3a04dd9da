package ports

import (
	"context"

	"github.com/videotube/account-service/internal/core/domain"
)

// WatchService validates, deduplicates, and persists a single watch event.
type WatchService interface {
	Record(ctx context.Context, event domain.WatchEvent) error
}
