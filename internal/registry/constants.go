package registry

import "time"

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests to registries.
	// A hung upstream counts as a failed request under each caller's policy.
	DefaultHTTPTimeout = 30 * time.Second

	// TagPageSize is the page size requested from the tag-list endpoint.
	TagPageSize = 1000

	// manifestV2MediaType is the manifest media type requested when resolving
	// a tag's config digest.
	manifestV2MediaType = "application/vnd.docker.distribution.manifest.v2+json"
)
