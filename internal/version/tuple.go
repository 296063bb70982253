// Package version extracts comparable numeric tuples from image tags and
// ranks them. It implements exactly the two policies the pipelines need:
// regex-capture tuples for the private registry and embedded dotted runs for
// the mirror registry. Tuples are only meaningful within one repository and
// one policy; they are never compared across repositories.
package version

// Key is the comparable representation extracted from a tag: an ordered
// numeric tuple. Arity is fixed by the capture pattern for the pattern
// policy and variable for the embedded policy.
type Key []int

// Compare orders two keys positionally, left to right, first difference
// decides. Missing trailing positions compare as zero, so [1,2] == [1,2,0].
// Returns -1, 0, or 1.
func Compare(a, b Key) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	for i := range n {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
