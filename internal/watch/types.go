package watch

import "time"

// Release is a single dated mirror tag.
type Release struct {
	Tag     string    `json:"tag"`
	Created time.Time `json:"created"`
}

// RepoResult holds the dated releases for one mirror image, newest first.
type RepoResult struct {
	// Image is the configured image URL, echoed verbatim.
	Image string `json:"image"`

	// Releases holds up to five dated releases. Empty (never nil)
	// when no tag could be ranked or dated.
	Releases []Release `json:"releases"`
}

// AggregateResult is the combined output of one check across the
// private registry and all mirrors.
type AggregateResult struct {
	// PrivateImages maps each watched image to its latest matching
	// tag, or to an "Error: ..." string when that image's check failed.
	PrivateImages map[string]string `json:"privateImages"`

	// MirrorImages holds one entry per configured mirror, in
	// configuration order.
	MirrorImages []RepoResult `json:"mirrorImages"`
}

// emptyResult is the degraded payload returned when a pipeline panics.
func emptyResult() AggregateResult {
	return AggregateResult{
		PrivateImages: map[string]string{},
		MirrorImages:  []RepoResult{},
	}
}
