package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kouzina-io/kouzina/internal/pkg/textutil"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
		{
			name:     "length mismatch",
			a:        []float32{1.0, 2.0},
			b:        []float32{1.0},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0.0, 0.0},
			b:        []float32{1.0, 1.0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestCosineDistance(t *testing.T) {
	a := []float32{1.0, 0.0}
	assert.InDelta(t, 0.0, textutil.CosineDistance(a, a), 0.0001)
	assert.InDelta(t, 1.0, textutil.CosineDistance(a, []float32{0.0, 1.0}), 0.0001)
	assert.InDelta(t, 2.0, textutil.CosineDistance(a, []float32{-1.0, 0.0}), 0.0001)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 90, 0},
		{"single value", []float64{3.5}, 90, 3.5},
		{"median of sorted pair", []float64{1, 3}, 50, 2},
		{"unsorted input", []float64{4, 1, 3, 2}, 50, 2.5},
		{"90th of 1..10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"0th is min", []float64{5, 1, 9}, 0, 1},
		{"100th is max", []float64{5, 1, 9}, 100, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.Percentile(tt.values, tt.p)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "plain periods",
			text:     "First sentence. Second sentence.",
			expected: []string{"First sentence.", "Second sentence."},
		},
		{
			name:     "no trailing terminator",
			text:     "First. Trailing fragment",
			expected: []string{"First.", "Trailing fragment"},
		},
		{
			name:     "greek question mark",
			text:     "Τι ώρα είναι; Είναι μεσημέρι.",
			expected: []string{"Τι ώρα είναι;", "Είναι μεσημέρι."},
		},
		{
			name:     "exclamation and question",
			text:     "Hello! How are you? Fine.",
			expected: []string{"Hello!", "How are you?", "Fine."},
		},
		{
			name:     "whitespace only",
			text:     "   \n  ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.SplitSentences(tt.text)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", textutil.TruncateString("abc", 10))
	assert.Equal(t, "ab", textutil.TruncateString("abcd", 2))
	// Rune-based, not byte-based.
	assert.Equal(t, "Συντ", textutil.TruncateString("Συνταγή", 4))
}

func TestHashString(t *testing.T) {
	hash1 := textutil.HashString("test")
	hash2 := textutil.HashString("test")
	assert.Equal(t, hash1, hash2)
	assert.Len(t, hash1, 32)
	assert.NotEqual(t, hash1, textutil.HashString("other"))
}
