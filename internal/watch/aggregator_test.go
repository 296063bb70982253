package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/registry"
)

// fakeRegistry serves the token, tag-list, manifest, and blob
// endpoints for a set of repositories.
type fakeRegistry struct {
	tags     map[string][]string          // repo -> tags
	created  map[string]map[string]string // repo -> tag -> created timestamp
	failList map[string]bool              // repo -> force 500 on tag list
}

func (f *fakeRegistry) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	mux.HandleFunc("GET /v2/{rest...}", func(w http.ResponseWriter, r *http.Request) {
		rest := r.PathValue("rest")
		switch {
		case strings.HasSuffix(rest, "/tags/list"):
			f.serveTags(w, r, strings.TrimSuffix(rest, "/tags/list"))
		case strings.Contains(rest, "/manifests/"):
			repo, tag, _ := strings.Cut(rest, "/manifests/")
			f.serveManifest(w, repo, tag)
		case strings.Contains(rest, "/blobs/"):
			repo, digest, _ := strings.Cut(rest, "/blobs/")
			f.serveBlob(w, repo, digest)
		default:
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeRegistry) serveTags(w http.ResponseWriter, r *http.Request, repo string) {
	if f.failList[repo] {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
		return
	}
	tags, ok := f.tags[repo]
	if !ok {
		http.NotFound(w, r)
		return
	}

	last := r.URL.Query().Get("last")
	start := 0
	if last != "" {
		for i, tag := range tags {
			if tag == last {
				start = i + 1
				break
			}
		}
	}
	end := start + registry.TagPageSize
	if end > len(tags) {
		end = len(tags)
	}
	json.NewEncoder(w).Encode(map[string]any{"name": repo, "tags": tags[start:end]})
}

func (f *fakeRegistry) serveManifest(w http.ResponseWriter, repo, tag string) {
	if _, ok := f.created[repo][tag]; !ok {
		http.Error(w, "manifest unknown", http.StatusNotFound)
		return
	}
	digest := "sha256:" + tag
	json.NewEncoder(w).Encode(map[string]any{
		"config": map[string]string{"digest": digest},
	})
}

func (f *fakeRegistry) serveBlob(w http.ResponseWriter, repo, digest string) {
	tag := strings.TrimPrefix(digest, "sha256:")
	created, ok := f.created[repo][tag]
	if !ok {
		http.Error(w, "blob unknown", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"created": created})
}

// host strips the scheme so the URL can stand in for a registry
// hostname with an insecure client.
func host(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func newTestAggregator(cfg config.Config) *Aggregator {
	client := registry.NewClient(&registry.Config{Insecure: true})
	return NewAggregator(client, cfg)
}

func mustCompile(t *testing.T, entries []config.WatchEntry) []config.WatchEntry {
	t.Helper()
	for i := range entries {
		entries[i].Regexp = regexp.MustCompile(entries[i].Pattern)
	}
	return entries
}

func TestCheckPrivateImages(t *testing.T) {
	fake := &fakeRegistry{
		tags: map[string][]string{
			"base/mariner": {"mariner_20230530.1", "mariner_20230601.2", "mariner_20230601.1", "latest"},
			"infra/agent":  {"v1.2.3", "v1.10.0", "v1.9.9"},
		},
	}
	srv := fake.server(t)

	cfg := config.Config{
		PrivateRegistry: host(srv),
		Watch: mustCompile(t, []config.WatchEntry{
			{Image: "base/mariner", Pattern: `mariner_(\d{8})\.(\d{1,2})`},
			{Image: "infra/agent", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
		}),
	}

	result := newTestAggregator(cfg).Check(context.Background())

	assert.Equal(t, map[string]string{
		"base/mariner": "mariner_20230601.2",
		"infra/agent":  "v1.10.0",
	}, result.PrivateImages)
	assert.NotNil(t, result.MirrorImages)
	assert.Empty(t, result.MirrorImages)
}

func TestCheckPrivateFailureIsInlineAndIsolated(t *testing.T) {
	fake := &fakeRegistry{
		tags: map[string][]string{
			"good/app":   {"v1.0.0", "v2.0.0"},
			"broken/app": {"v1.0.0"},
			"plain/app":  {"latest", "stable"},
		},
		failList: map[string]bool{"broken/app": true},
	}
	srv := fake.server(t)

	cfg := config.Config{
		PrivateRegistry: host(srv),
		Watch: mustCompile(t, []config.WatchEntry{
			{Image: "good/app", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
			{Image: "broken/app", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
			{Image: "plain/app", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
		}),
	}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.PrivateImages, 3)
	assert.Equal(t, "v2.0.0", result.PrivateImages["good/app"])
	assert.True(t, strings.HasPrefix(result.PrivateImages["broken/app"], "Error: "),
		"list failure should surface inline, got %q", result.PrivateImages["broken/app"])
	assert.True(t, strings.HasPrefix(result.PrivateImages["plain/app"], "Error: "),
		"no-match should surface inline, got %q", result.PrivateImages["plain/app"])
}

func TestCheckMirrorReleasesSortedByDate(t *testing.T) {
	// Version order and date order deliberately disagree: v3.0.0 is
	// the newest version but carries the oldest build date.
	fake := &fakeRegistry{
		tags: map[string][]string{
			"oss/app": {"v1.0.0", "v2.0.0", "v3.0.0", "garbage"},
		},
		created: map[string]map[string]string{
			"oss/app": {
				"v1.0.0": "2023-02-01T00:00:00Z",
				"v2.0.0": "2023-03-01T00:00:00Z",
				"v3.0.0": "2023-01-01T00:00:00Z",
			},
		},
	}
	srv := fake.server(t)

	cfg := config.Config{
		Mirrors: []string{srv.URL + "/v2/oss/app/tags/list"},
	}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.MirrorImages, 1)
	repo := result.MirrorImages[0]
	assert.Equal(t, srv.URL+"/v2/oss/app/tags/list", repo.Image)

	require.Len(t, repo.Releases, 3)
	assert.Equal(t, "v2.0.0", repo.Releases[0].Tag)
	assert.Equal(t, "v1.0.0", repo.Releases[1].Tag)
	assert.Equal(t, "v3.0.0", repo.Releases[2].Tag)
	assert.True(t, repo.Releases[0].Created.After(repo.Releases[1].Created))
}

func TestCheckMirrorDropsUndatedTags(t *testing.T) {
	fake := &fakeRegistry{
		tags: map[string][]string{
			"oss/app": {"v1.0.0", "v2.0.0"},
		},
		created: map[string]map[string]string{
			"oss/app": {"v1.0.0": "2023-02-01T00:00:00Z"},
		},
	}
	srv := fake.server(t)

	cfg := config.Config{Mirrors: []string{host(srv) + "/oss/app"}}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.MirrorImages, 1)
	require.Len(t, result.MirrorImages[0].Releases, 1)
	assert.Equal(t, "v1.0.0", result.MirrorImages[0].Releases[0].Tag)
}

func TestCheckMirrorCapsAtFiveReleases(t *testing.T) {
	tags := make([]string, 8)
	created := map[string]string{}
	for i := range tags {
		tags[i] = fmt.Sprintf("v1.%d.0", i)
		created[tags[i]] = fmt.Sprintf("2023-01-0%dT00:00:00Z", i+1)
	}
	fake := &fakeRegistry{
		tags:    map[string][]string{"oss/app": tags},
		created: map[string]map[string]string{"oss/app": created},
	}
	srv := fake.server(t)

	cfg := config.Config{Mirrors: []string{host(srv) + "/oss/app"}}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.MirrorImages, 1)
	releases := result.MirrorImages[0].Releases
	require.Len(t, releases, 5)
	// Only the five greatest versions are dated, newest date first.
	assert.Equal(t, "v1.7.0", releases[0].Tag)
	assert.Equal(t, "v1.3.0", releases[4].Tag)
}

func TestCheckMirrorListFailureDegradesToEmpty(t *testing.T) {
	fake := &fakeRegistry{
		failList: map[string]bool{"oss/app": true},
		tags:     map[string][]string{"oss/app": {"v1.0.0"}},
	}
	srv := fake.server(t)

	cfg := config.Config{Mirrors: []string{host(srv) + "/oss/app"}}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.MirrorImages, 1)
	assert.Equal(t, host(srv)+"/oss/app", result.MirrorImages[0].Image)
	assert.NotNil(t, result.MirrorImages[0].Releases)
	assert.Empty(t, result.MirrorImages[0].Releases)
}

func TestCheckUnreachableEverythingStaysWellFormed(t *testing.T) {
	cfg := config.Config{
		PrivateRegistry: "127.0.0.1:1",
		Watch: mustCompile(t, []config.WatchEntry{
			{Image: "team/app", Pattern: `v(\d+)`},
		}),
		Mirrors: []string{"127.0.0.1:1/oss/app"},
	}

	result := newTestAggregator(cfg).Check(context.Background())

	require.Len(t, result.PrivateImages, 1)
	assert.True(t, strings.HasPrefix(result.PrivateImages["team/app"], "Error: "))
	require.Len(t, result.MirrorImages, 1)
	assert.Empty(t, result.MirrorImages[0].Releases)
}

func TestAggregateResultJSONShape(t *testing.T) {
	fake := &fakeRegistry{
		tags: map[string][]string{
			"team/app": {"v1.0.0"},
			"oss/app":  {"v2.0.0"},
		},
		created: map[string]map[string]string{
			"oss/app": {"v2.0.0": "2023-06-01T12:30:00Z"},
		},
	}
	srv := fake.server(t)

	cfg := config.Config{
		PrivateRegistry: host(srv),
		Watch: mustCompile(t, []config.WatchEntry{
			{Image: "team/app", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
		}),
		Mirrors: []string{host(srv) + "/oss/app"},
	}

	result := newTestAggregator(cfg).Check(context.Background())

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded struct {
		PrivateImages map[string]string `json:"privateImages"`
		MirrorImages  []struct {
			Image    string `json:"image"`
			Releases []struct {
				Tag     string `json:"tag"`
				Created string `json:"created"`
			} `json:"releases"`
		} `json:"mirrorImages"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "v1.0.0", decoded.PrivateImages["team/app"])
	require.Len(t, decoded.MirrorImages, 1)
	require.Len(t, decoded.MirrorImages[0].Releases, 1)
	assert.Equal(t, "v2.0.0", decoded.MirrorImages[0].Releases[0].Tag)
	assert.Equal(t, "2023-06-01T12:30:00Z", decoded.MirrorImages[0].Releases[0].Created)
}
