package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// tokenResponse represents the JSON response from the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// FetchToken obtains a short-lived bearer token scoped to metadata reads on
// one repository. The service name is the registry host itself. There is no
// caching and no retry; the token is consumed by a single listing call.
func (c *Client) FetchToken(ctx context.Context, registry, repository string) (string, error) {
	endpoint := fmt.Sprintf("%s/oauth2/token?service=%s&scope=%s",
		c.baseURL(registry),
		url.QueryEscape(registry),
		url.QueryEscape(fmt.Sprintf("repository:%s:metadata_read", repository)))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", &AuthError{Repository: repository, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Repository: repository, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewAuthError(repository, "token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", &AuthError{Repository: repository, Err: fmt.Errorf("failed to decode token response: %w", err)}
	}

	return tokenResp.AccessToken, nil
}
