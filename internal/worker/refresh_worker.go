package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/catalog"
)

// Refresher reloads the catalog snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// RefreshWorker periodically reloads the catalog from its source.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
}

// NewRefreshWorker constructs a RefreshWorker.
func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
// The first refresh happens one interval after start; the initial load is
// done by the caller.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog refresh worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog refresh worker stopped")
			return
		}
	}
}

func (w *RefreshWorker) run(ctx context.Context) {
	start := time.Now()
	snap, err := w.refresher.Refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh catalog")
		return
	}
	log.Debug().Int64("version", snap.Version).Dur("duration", time.Since(start)).Msg("Catalog refresh completed")
}
