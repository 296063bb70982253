package watch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/storage"
)

// Poller runs aggregate checks on a fixed interval and records each
// run's outcome to storage when storage is configured.
type Poller struct {
	aggregator *Aggregator
	store      storage.Storage
	interval   time.Duration

	stopChan  chan struct{}
	runningMu sync.Mutex
	running   bool
	pollingMu sync.Mutex
	polling   bool
}

// NewPoller creates a poller. store may be nil; runs are then only
// logged, not persisted.
func NewPoller(aggregator *Aggregator, store storage.Storage, interval time.Duration) *Poller {
	return &Poller{
		aggregator: aggregator,
		store:      store,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the polling loop. An initial run fires immediately.
func (p *Poller) Start() {
	p.runningMu.Lock()
	if p.running {
		p.runningMu.Unlock()
		return
	}
	p.running = true
	p.runningMu.Unlock()

	logging.Logger.Info("poller starting", zap.Duration("interval", p.interval))

	go p.runOnce()
	go p.loop()
}

// Stop halts the polling loop. A run in flight finishes on its own.
func (p *Poller) Stop() {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if !p.running {
		return
	}

	logging.Logger.Info("poller stopping")
	close(p.stopChan)
	p.running = false
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.runOnce()
		}
	}
}

// runOnce performs a single aggregate check. Overlapping runs are
// skipped rather than queued.
func (p *Poller) runOnce() {
	p.pollingMu.Lock()
	if p.polling {
		p.pollingMu.Unlock()
		logging.Logger.Debug("poll already in progress, skipping")
		return
	}
	p.polling = true
	p.pollingMu.Unlock()

	defer func() {
		p.pollingMu.Lock()
		p.polling = false
		p.pollingMu.Unlock()
	}()

	start := time.Now()
	ctx := context.Background()

	result := p.aggregator.Check(ctx)
	run := summarize(result, start)

	logging.Logger.Info("poll run completed",
		zap.Int64("durationMs", run.DurationMs),
		zap.Int("privateOk", run.PrivateOK),
		zap.Int("privateErr", run.PrivateErr),
		zap.Int("mirrorReleases", run.MirrorReleases))

	if p.store == nil {
		return
	}
	if err := p.store.RecordPollRun(ctx, run); err != nil {
		logging.Logger.Warn("failed to record poll run", zap.Error(err))
	}
}

// summarize reduces one aggregate result to a history row.
func summarize(result AggregateResult, start time.Time) storage.PollRun {
	run := storage.PollRun{
		ID:          uuid.New().String(),
		StartedAt:   start.UTC(),
		DurationMs:  time.Since(start).Milliseconds(),
		MirrorRepos: len(result.MirrorImages),
	}
	for _, value := range result.PrivateImages {
		if strings.HasPrefix(value, "Error: ") {
			run.PrivateErr++
		} else {
			run.PrivateOK++
		}
	}
	for _, repo := range result.MirrorImages {
		run.MirrorReleases += len(repo.Releases)
	}
	return run
}
