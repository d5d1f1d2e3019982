// Package fuzzy provides the edit-similarity metric shared by the
// normalizer's enum fallback and the resolver's name matching.
package fuzzy

import "github.com/agext/levenshtein"

// Similarity returns a normalized edit similarity between two strings on a
// 0-100 scale. Symmetric; 100 means identical strings.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil) * 100
}

// BestMatch returns the candidate with the highest similarity to s at or
// above threshold. A later candidate must score strictly higher to displace
// an earlier one, so ties keep the first candidate in slice order.
func BestMatch(s string, candidates []string, threshold float64) (string, float64, bool) {
	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		score := Similarity(s, c)
		if score >= threshold && score > bestScore {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}
