// Package registry implements a read-only Docker Registry V2 client:
// token auth, paginated tag listing, and manifest/config metadata lookup.
package registry

import (
	"net/http"
	"strings"
	"time"
)

// Config contains configuration for registry access.
type Config struct {
	// Insecure allows plain HTTP connections (default: false)
	Insecure bool

	// Timeout for registry requests in seconds
	TimeoutSeconds int
}

// Client talks to Docker Registry V2 endpoints. One client may serve any
// number of registries; the registry host is passed per call.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new registry client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = int(DefaultHTTPTimeout / time.Second)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}
}

// baseURL returns the scheme-qualified base URL for a registry host.
// Hosts that already carry a scheme are used verbatim.
func (c *Client) baseURL(registry string) string {
	if strings.Contains(registry, "://") {
		return strings.TrimRight(registry, "/")
	}

	protocol := "https"
	if c.config.Insecure {
		protocol = "http"
	}
	return protocol + "://" + registry
}
