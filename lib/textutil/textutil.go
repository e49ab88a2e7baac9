package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName collapses runs of whitespace into a single space and trims
// the ends. Roster joins compare normalized names; case is preserved since
// "alice lee" and "Alice Lee" are different roster entries on Gradescope.
func NormalizeName(name string) string {
	name = strings.Trim(name, " \n\t")
	return whitespaceRegex.ReplaceAllString(name, " ")
}

// ClosestName returns the candidate most similar to name along with its
// Jaro-Winkler similarity in [0, 1]. Returns ("", 0) when candidates is empty.
func ClosestName(name string, candidates []string) (string, float64) {
	var best string
	var bestSimilarity float64
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(name, c, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = c
		}
	}
	return best, bestSimilarity
}
