package version

import (
	"fmt"
	"regexp"
	"strconv"
)

// NoMatchError indicates that no tag in a set matched the required pattern.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no tag matched pattern %q", e.Pattern)
}

// RankLatest selects the tag whose capture groups form the lexicographically
// greatest numeric tuple under Compare. Unparsable captures count as zero
// (a misconfigured pattern, not a runtime condition). Replacement is strict
// greater-than: the first matching tag seeds the running best and equal
// tuples keep the earlier-seen tag.
func RankLatest(tags []string, pattern *regexp.Regexp) (string, error) {
	var (
		best    string
		bestKey Key
		found   bool
	)

	for _, tag := range tags {
		m := pattern.FindStringSubmatch(tag)
		if m == nil {
			continue
		}

		key := make(Key, 0, len(m)-1)
		for _, capture := range m[1:] {
			n, _ := strconv.Atoi(capture)
			key = append(key, n)
		}

		if !found || Compare(key, bestKey) > 0 {
			best = tag
			bestKey = key
			found = true
		}
	}

	if !found {
		return "", &NoMatchError{Pattern: pattern.String()}
	}
	return best, nil
}
