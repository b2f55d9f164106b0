package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var separatorRegex = regexp.MustCompile(`[\s\-]+`)

// NormalizeName turns a display label like "Pura Raza Española" or
// "Akhal-Teke" into a key like "pura_raza_española" or "akhal_teke".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return separatorRegex.ReplaceAllString(name, "_")
}

// ClosestMatch returns the candidate most similar to `name` by Jaro-Winkler
// distance over normalized names, and false when none reaches `threshold`.
func ClosestMatch(name string, candidates []string, threshold float64) (string, bool) {
	normalized := NormalizeName(name)

	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < threshold {
		return "", false
	}
	return best, true
}
