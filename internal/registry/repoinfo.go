package registry

import "strings"

// RepoInfo identifies one repository within one registry host.
type RepoInfo struct {
	// Registry is the registry hostname (e.g., "mcr.microsoft.com")
	Registry string

	// Repository is the image repository path (e.g., "oss/nginx/nginx")
	Repository string
}

// ParseRepoURL decomposes a configured image URL into registry host and
// repository path. It accepts both bare "host/path" references and full
// tag-list URLs ("https://host/v2/path/tags/list"); both forms of the same
// repository yield identical results.
func ParseRepoURL(raw string) RepoInfo {
	s := raw

	// Strip scheme
	if i := strings.Index(s, "://"); i != -1 {
		s = s[i+3:]
	}

	s = strings.Trim(s, "/")

	host, path, found := strings.Cut(s, "/")
	if !found {
		return RepoInfo{Registry: host}
	}

	path = strings.TrimPrefix(path, "v2/")
	path = strings.TrimSuffix(path, "/tags/list")
	path = strings.Trim(path, "/")

	return RepoInfo{Registry: host, Repository: path}
}
