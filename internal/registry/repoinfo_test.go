package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RepoInfo
	}{
		{
			name: "bare reference",
			in:   "mcr.microsoft.com/oss/foo",
			want: RepoInfo{Registry: "mcr.microsoft.com", Repository: "oss/foo"},
		},
		{
			name: "full tags-list URL",
			in:   "https://mcr.microsoft.com/v2/oss/foo/tags/list",
			want: RepoInfo{Registry: "mcr.microsoft.com", Repository: "oss/foo"},
		},
		{
			name: "nested repository path",
			in:   "https://mcr.microsoft.com/v2/oss/kubernetes/kubectl/tags/list",
			want: RepoInfo{Registry: "mcr.microsoft.com", Repository: "oss/kubernetes/kubectl"},
		},
		{
			name: "trailing slashes trimmed",
			in:   "mcr.microsoft.com/oss/foo/",
			want: RepoInfo{Registry: "mcr.microsoft.com", Repository: "oss/foo"},
		},
		{
			name: "host only",
			in:   "mcr.microsoft.com",
			want: RepoInfo{Registry: "mcr.microsoft.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRepoURL(tt.in))
		})
	}
}

func TestParseRepoURLBothFormsAgree(t *testing.T) {
	bare := ParseRepoURL("mcr.microsoft.com/oss/foo")
	full := ParseRepoURL("https://mcr.microsoft.com/v2/oss/foo/tags/list")
	assert.Equal(t, bare, full)
}
