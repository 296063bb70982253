package watch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/version"
)

// checkPrivate ranks every watched private repository and returns a
// map of image name to its latest matching tag. A failed image does
// not abort its siblings; the failure is recorded inline as an
// "Error: ..." value.
func (a *Aggregator) checkPrivate(ctx context.Context) map[string]string {
	results := make([]string, len(a.watch))

	sem := make(chan struct{}, a.maxConcurrency)
	var wg sync.WaitGroup

	for i, entry := range a.watch {
		wg.Add(1)
		go func(idx int, e config.WatchEntry) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			tag, err := a.checkEntry(ctx, e)
			if err != nil {
				logging.Logger.Warn("private image check failed",
					zap.String("image", e.Image),
					zap.Error(err))
				results[idx] = "Error: " + err.Error()
				return
			}
			results[idx] = tag
		}(i, entry)
	}

	wg.Wait()

	out := make(map[string]string, len(a.watch))
	for i, entry := range a.watch {
		out[entry.Image] = results[i]
	}
	return out
}

// checkEntry lists one repository's tags with authentication and
// picks the greatest tag under the entry's pattern.
func (a *Aggregator) checkEntry(ctx context.Context, entry config.WatchEntry) (string, error) {
	tags, err := a.client.ListTags(ctx, a.privateRegistry, entry.Image, true)
	if err != nil {
		return "", err
	}
	return version.RankLatest(tags, entry.Regexp)
}
