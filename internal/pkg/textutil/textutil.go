// Package textutil provides text processing helpers for the ingestion
// and retrieval pipeline.
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// CosineSimilarity computes the cosine similarity of two vectors.
// The result is in [-1, 1]; mismatched or empty vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 minus the cosine similarity.
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. p is in [0, 100]. An empty
// input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// sentence terminators, including the Greek question mark forms.
var sentenceTerminators = map[rune]bool{
	'.':      true,
	'!':      true,
	'?':      true,
	';':      true,
	';': true, // Greek question mark
}

// SplitSentences splits text into sentences on terminal punctuation.
// The terminator stays attached to its sentence. Whitespace-only
// fragments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder

	flush := func() {
		s := strings.TrimSpace(sb.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		sb.Reset()
	}

	for _, r := range text {
		sb.WriteRune(r)
		if sentenceTerminators[r] {
			flush()
		}
	}
	flush()

	return sentences
}

// TruncateString truncates a string to maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// HashString returns the MD5 hex digest of a string.
func HashString(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])
}
