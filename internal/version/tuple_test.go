package version

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a        Key
		b        Key
		expected int
	}{
		{
			name:     "equal keys",
			a:        Key{1, 2, 3},
			b:        Key{1, 2, 3},
			expected: 0,
		},
		{
			name:     "first position decides",
			a:        Key{2, 0},
			b:        Key{1, 99},
			expected: 1,
		},
		{
			name:     "later position decides",
			a:        Key{1, 2, 3},
			b:        Key{1, 2, 4},
			expected: -1,
		},
		{
			name:     "numeric not lexicographic",
			a:        Key{1, 10, 0},
			b:        Key{1, 2, 0},
			expected: 1,
		},
		{
			name:     "missing trailing positions compare as zero",
			a:        Key{1, 2},
			b:        Key{1, 2, 0},
			expected: 0,
		},
		{
			name:     "shorter key loses when padded position differs",
			a:        Key{1, 2},
			b:        Key{1, 2, 1},
			expected: -1,
		},
		{
			name:     "empty vs non-empty",
			a:        Key{},
			b:        Key{0, 0, 1},
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	a := Key{1, 2, 3}
	b := Key{1, 3}

	if Compare(a, b) != -Compare(b, a) {
		t.Errorf("Compare(a, b) and Compare(b, a) are not antisymmetric")
	}
}
