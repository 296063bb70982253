// Package watch runs the tag checks: it ranks private repositories
// with configured patterns and mirrors with embedded versions, then
// merges both into a single aggregate result.
package watch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/registry"
)

const defaultMaxConcurrency = 5

// Aggregator checks the private registry and the mirrors.
type Aggregator struct {
	client          *registry.Client
	privateRegistry string
	watch           []config.WatchEntry
	mirrors         []string
	maxConcurrency  int
}

// NewAggregator creates an aggregator from the loaded configuration.
func NewAggregator(client *registry.Client, cfg config.Config) *Aggregator {
	return &Aggregator{
		client:          client,
		privateRegistry: cfg.PrivateRegistry,
		watch:           cfg.Watch,
		mirrors:         cfg.Mirrors,
		maxConcurrency:  defaultMaxConcurrency,
	}
}

// SetMaxConcurrency bounds the per-pipeline fan-out. Values below 1
// are ignored.
func (a *Aggregator) SetMaxConcurrency(max int) {
	if max >= 1 {
		a.maxConcurrency = max
	}
}

// Check runs both pipelines concurrently and merges their output.
// It never fails: an unexpected panic in either pipeline degrades
// that side to an empty value so the caller always receives a
// well-formed result.
func (a *Aggregator) Check(ctx context.Context) AggregateResult {
	result := emptyResult()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Logger.Error("private pipeline panicked",
					zap.Any("panic", r))
				result.PrivateImages = map[string]string{}
			}
		}()
		result.PrivateImages = a.checkPrivate(ctx)
	}()

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Logger.Error("mirror pipeline panicked",
					zap.Any("panic", r))
				result.MirrorImages = []RepoResult{}
			}
		}()
		result.MirrorImages = a.checkMirrors(ctx)
	}()

	wg.Wait()
	return result
}
