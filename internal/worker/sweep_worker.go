package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// SweepWorker evicts expired in-process sessions.
type SweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
}

// NewSweepWorker constructs a SweepWorker.
func NewSweepWorker(sweeper Sweeper, interval time.Duration) *SweepWorker {
	return &SweepWorker{sweeper: sweeper, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := w.sweeper.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired catalog sessions swept")
			}
		case <-ctx.Done():
			return
		}
	}
}
