package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Spunkeroo/scam-stream/internal/model"
)

// StatsWorker periodically snapshots the hero statistics and hands each
// snapshot to publish.
type StatsWorker struct {
	catalog  *Catalog
	reports  *SubmissionRegistry
	interval time.Duration
	publish  func(model.StatsResponse)

	mu       sync.RWMutex
	latest   *model.StatsResponse
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStatsWorker creates a worker that ticks every interval. publish may be nil.
func NewStatsWorker(catalog *Catalog, reports *SubmissionRegistry, interval time.Duration, publish func(model.StatsResponse)) *StatsWorker {
	return &StatsWorker{
		catalog:  catalog,
		reports:  reports,
		interval: interval,
		publish:  publish,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one tick immediately, then every interval until ctx is done or
// Stop is called.
func (w *StatsWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("stats-worker: starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Info().Msg("stats-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Info().Msg("stats-worker: stopping (stop signal)")
			return
		}
	}
}

// Refresh recomputes and publishes a snapshot now, outside the ticker.
func (w *StatsWorker) Refresh(ctx context.Context) {
	w.tick(ctx)
}

func (w *StatsWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Latest returns the last snapshot, computing one if the worker has not
// ticked yet.
func (w *StatsWorker) Latest(ctx context.Context) (model.StatsResponse, error) {
	w.mu.RLock()
	latest := w.latest
	w.mu.RUnlock()
	if latest != nil {
		return *latest, nil
	}
	return w.Compute(ctx)
}

// Compute counts fixture scams, stored reports and promoted reports.
func (w *StatsWorker) Compute(ctx context.Context) (model.StatsResponse, error) {
	reports, err := w.reports.Summaries(ctx)
	if err != nil {
		return model.StatsResponse{}, err
	}
	promoted := 0
	for _, r := range reports {
		if r.Score() >= w.reports.Threshold() {
			promoted++
		}
	}
	return model.StatsResponse{
		Scams:       len(w.catalog.Scams()),
		Reports:     len(reports),
		Promoted:    promoted,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (w *StatsWorker) tick(ctx context.Context) {
	start := time.Now()

	stats, err := w.Compute(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stats-worker: error")
		return
	}

	w.mu.Lock()
	w.latest = &stats
	w.mu.Unlock()

	if w.publish != nil {
		w.publish(stats)
	}

	log.Debug().Int("scams", stats.Scams).Int("reports", stats.Reports).Int("promoted", stats.Promoted).
		Dur("elapsed", time.Since(start)).Msg("stats-worker: tick complete")
}
