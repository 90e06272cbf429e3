package intent

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyThreshold is the minimum PartialRatio score treated as a match.
const fuzzyThreshold = 80

// PartialRatio scores how well the shorter of the two strings matches a
// substring of the longer one, on a 0-100 scale. It slides a window the
// length of the shorter string across the longer one and keeps the best
// normalized Levenshtein similarity.
func PartialRatio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := string(long[i : i+len(short)])
		dist := levenshtein.ComputeDistance(string(short), window)
		score := 100 * (len(short) - dist) / len(short)
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// fuzzyMatchAny reports whether any of the phrases scores at or above the
// match threshold against the query.
func fuzzyMatchAny(query string, phrases []string) bool {
	for _, p := range phrases {
		if PartialRatio(p, query) >= fuzzyThreshold {
			return true
		}
	}
	return false
}
