package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/chis/tagwatch/internal/logging"
	"go.uber.org/zap"
)

// manifestResponse is the subset of a V2 image manifest this client reads.
type manifestResponse struct {
	Config struct {
		Digest string `json:"digest"`
	} `json:"config"`
}

// configBlob is the subset of an image config blob this client reads.
type configBlob struct {
	Created string `json:"created"`
}

// ResolveCreated fetches the manifest for a tag, follows its config digest,
// and returns the image's creation timestamp.
//
// This resolver never fails the caller: any transport error, non-success
// status, missing field, or parse failure yields (zero, false). Callers treat
// that as "no date available" for the tag.
func (c *Client) ResolveCreated(ctx context.Context, registry, repository, tag string) (time.Time, bool) {
	digest, ok := c.fetchConfigDigest(ctx, registry, repository, tag)
	if !ok {
		return time.Time{}, false
	}
	return c.fetchCreated(ctx, registry, repository, tag, digest)
}

func (c *Client) fetchConfigDigest(ctx context.Context, registry, repository, tag string) (string, bool) {
	endpoint := c.baseURL(registry) + "/v2/" + repository + "/manifests/" + tag

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", manifestV2MediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger.Warn("manifest request failed",
			zap.String("repository", repository), zap.String("tag", tag), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Logger.Warn("manifest request returned non-success status",
			zap.String("repository", repository), zap.String("tag", tag), zap.Int("status", resp.StatusCode))
		return "", false
	}

	var manifest manifestResponse
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		logging.Logger.Warn("failed to decode manifest",
			zap.String("repository", repository), zap.String("tag", tag), zap.Error(err))
		return "", false
	}

	if manifest.Config.Digest == "" {
		logging.Logger.Warn("manifest has no config digest",
			zap.String("repository", repository), zap.String("tag", tag))
		return "", false
	}

	return manifest.Config.Digest, true
}

func (c *Client) fetchCreated(ctx context.Context, registry, repository, tag, digest string) (time.Time, bool) {
	endpoint := c.baseURL(registry) + "/v2/" + repository + "/blobs/" + digest

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return time.Time{}, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger.Warn("config blob request failed",
			zap.String("repository", repository), zap.String("tag", tag), zap.Error(err))
		return time.Time{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Logger.Warn("config blob request returned non-success status",
			zap.String("repository", repository), zap.String("tag", tag), zap.Int("status", resp.StatusCode))
		return time.Time{}, false
	}

	var blob configBlob
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		logging.Logger.Warn("failed to decode config blob",
			zap.String("repository", repository), zap.String("tag", tag), zap.Error(err))
		return time.Time{}, false
	}

	if blob.Created == "" {
		logging.Logger.Warn("config blob has no created field",
			zap.String("repository", repository), zap.String("tag", tag))
		return time.Time{}, false
	}

	created, err := time.Parse(time.RFC3339, blob.Created)
	if err != nil {
		logging.Logger.Warn("unparsable created timestamp",
			zap.String("repository", repository), zap.String("tag", tag),
			zap.String("created", blob.Created), zap.Error(err))
		return time.Time{}, false
	}

	return created, true
}
