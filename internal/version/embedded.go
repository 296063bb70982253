package version

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// embeddedPattern finds the first embedded version run in a tag: an optional
// leading "v" followed by two or more dot-separated numeric groups. Go's
// regexp has no lookbehind, so the "not preceded by a digit or dot" boundary
// is expressed as a consumed leading-context group.
var embeddedPattern = regexp.MustCompile(`(?:^|[^0-9.])v?([0-9]+(?:\.[0-9]+)+)`)

// ExtractKey scans a tag for its first embedded dotted numeric run and
// parses it into a variable-length tuple. Tags without such a run report
// false and are dropped from ranking entirely.
func ExtractKey(tag string) (Key, bool) {
	m := embeddedPattern.FindStringSubmatch(tag)
	if m == nil {
		return nil, false
	}

	parts := strings.Split(m[1], ".")
	key := make(Key, 0, len(parts))
	for _, part := range parts {
		n, _ := strconv.Atoi(part)
		key = append(key, n)
	}
	return key, true
}

// TopN returns the n greatest version-bearing tags in ascending tuple
// order. Tags without an embedded version run are skipped, the remainder is
// sorted ascending under Compare (numeric per position, so 1.10 > 1.2), and
// the trailing n entries are returned preserving that ascending order.
// TopN never fails; no matches yields an empty slice.
func TopN(tags []string, n int) []string {
	type candidate struct {
		tag string
		key Key
	}

	candidates := make([]candidate, 0, len(tags))
	for _, tag := range tags {
		if key, ok := ExtractKey(tag); ok {
			candidates = append(candidates, candidate{tag: tag, key: key})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return Compare(candidates[i].key, candidates[j].key) < 0
	})

	if n > len(candidates) {
		n = len(candidates)
	}

	top := make([]string, 0, n)
	for _, c := range candidates[len(candidates)-n:] {
		top = append(top, c.tag)
	}
	return top
}
