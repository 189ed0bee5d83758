package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// LeaderboardWorker is a periodic background job that reloads the cached
// leaderboard so reads between votes stay warm.
type LeaderboardWorker struct {
	svc      *GamificationService
	interval time.Duration
	stopCh   chan struct{}
}

// NewLeaderboardWorker creates a worker that ticks every interval.
func NewLeaderboardWorker(svc *GamificationService, interval time.Duration) *LeaderboardWorker {
	return &LeaderboardWorker{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one tick immediately, then every interval until ctx is done or Stop is called.
func (w *LeaderboardWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("leaderboard-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Info().Msg("leaderboard-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Info().Msg("leaderboard-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *LeaderboardWorker) Stop() {
	close(w.stopCh)
}

func (w *LeaderboardWorker) tick(ctx context.Context) {
	start := time.Now()

	top, err := w.svc.RefreshLeaderboard(ctx)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard-worker: refresh failed")
		return
	}

	log.Debug().
		Int("profiles", len(top)).
		Dur("duration_ms", time.Since(start)).
		Msg("leaderboard-worker: tick complete")
}
