package anchor

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// SuggestThreshold is the minimum Levenshtein similarity for Suggest to
// propose a candidate.
const SuggestThreshold = 0.6

// Suggest returns the candidate most similar to name, compared
// case-insensitively. found is false when no candidate reaches
// SuggestThreshold. Ties keep the earlier candidate.
func Suggest(name string, candidates []string) (best string, found bool) {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false

	score := 0.0
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			return c, true
		}
		if s := strutil.Similarity(name, c, lev); s > score {
			best, score = c, s
		}
	}
	if score < SuggestThreshold {
		return "", false
	}
	return best, true
}
