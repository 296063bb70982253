package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/chis/tagwatch/internal/logging"
	"go.uber.org/zap"
)

// tagsResponse represents the JSON response from the /v2/.../tags/list endpoint.
type tagsResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// ListTags returns the complete set of tags for a repository, paging through
// the tag-list endpoint with a last-seen-tag cursor.
//
// When withToken is set, a fresh token is fetched for every page; registries
// enforce token expiry server-side and a long listing can outlive one token.
// The loop continues strictly while the returned page is non-empty: a short
// page does not stop pagination, only an explicitly empty page does, so a
// repository with an exact multiple of TagPageSize tags costs one extra
// confirming round trip. Any non-success page fails the whole call.
func (c *Client) ListTags(ctx context.Context, registry, repository string, withToken bool) ([]string, error) {
	var allTags []string
	last := ""

	for {
		token := ""
		if withToken {
			t, err := c.FetchToken(ctx, registry, repository)
			if err != nil {
				return nil, err
			}
			token = t
		}

		endpoint := fmt.Sprintf("%s/v2/%s/tags/list?n=%d", c.baseURL(registry), repository, TagPageSize)
		if last != "" {
			endpoint += "&last=" + url.QueryEscape(last)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, &ListError{Repository: repository, Err: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &ListError{Repository: repository, Err: err}
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, NewListError(repository, "registry returned %d: %s", resp.StatusCode, string(body))
		}

		var page tagsResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, &ListError{Repository: repository, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		resp.Body.Close()

		if len(page.Tags) == 0 {
			break
		}

		allTags = append(allTags, page.Tags...)
		last = page.Tags[len(page.Tags)-1]
	}

	logging.Logger.Debug("listed tags",
		zap.String("registry", registry),
		zap.String("repository", repository),
		zap.Int("count", len(allTags)))

	return allTags, nil
}
