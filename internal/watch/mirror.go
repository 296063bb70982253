package watch

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/registry"
	"github.com/chis/tagwatch/internal/version"
)

// mirrorCandidates caps how many version-ranked tags are dated and
// how many dated releases each mirror reports.
const mirrorCandidates = 5

// checkMirrors queries every configured mirror and returns one
// RepoResult per mirror, in configuration order. Mirror failures are
// logged and degrade to empty release lists, never errors.
func (a *Aggregator) checkMirrors(ctx context.Context) []RepoResult {
	results := make([]RepoResult, len(a.mirrors))

	sem := make(chan struct{}, a.maxConcurrency)
	var wg sync.WaitGroup

	for i, image := range a.mirrors {
		wg.Add(1)
		go func(idx int, img string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = a.checkMirror(ctx, img)
		}(i, image)
	}

	wg.Wait()
	return results
}

// checkMirror ranks one mirror's tags by embedded version, resolves
// creation dates for the top candidates, and returns the dated subset
// newest first.
func (a *Aggregator) checkMirror(ctx context.Context, image string) RepoResult {
	result := RepoResult{Image: image, Releases: []Release{}}

	info := registry.ParseRepoURL(image)

	tags, err := a.client.ListTags(ctx, info.Registry, info.Repository, false)
	if err != nil {
		logging.Logger.Warn("mirror tag listing failed",
			zap.String("image", image),
			zap.Error(err))
		return result
	}

	candidates := version.TopN(tags, mirrorCandidates)
	if len(candidates) == 0 {
		return result
	}

	// Resolve creation dates in parallel. Completion order doesn't
	// matter; the dated subset is sorted afterwards.
	type dated struct {
		release Release
		ok      bool
	}
	resolved := make([]dated, len(candidates))

	var wg sync.WaitGroup
	for i, tag := range candidates {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()
			created, ok := a.client.ResolveCreated(ctx, info.Registry, info.Repository, t)
			resolved[idx] = dated{release: Release{Tag: t, Created: created}, ok: ok}
		}(i, tag)
	}
	wg.Wait()

	for _, d := range resolved {
		if d.ok {
			result.Releases = append(result.Releases, d.release)
		}
	}

	// Presented order is strictly date-based, newest first, even when
	// it disagrees with version order.
	sort.SliceStable(result.Releases, func(i, j int) bool {
		return result.Releases[i].Created.After(result.Releases[j].Created)
	})

	if len(result.Releases) > mirrorCandidates {
		result.Releases = result.Releases[:mirrorCandidates]
	}

	return result
}
