// Package text_distance implements Levenshtein edit distance and picks the
// closest candidate name to a misspelled identifier, used to power
// "did you mean" suggestions in schema errors.
package text_distance

// Distance computes the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return distance(a, b)
}

// distance computes the Levenshtein edit distance between a and b.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minOf3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// FindSimilarName returns the name in names closest to target by edit
// distance. If target is empty or names is empty, it returns names[0] (or
// "" when names is empty) so callers always get a usable fallback.
func FindSimilarName(names []string, target string) string {
	if len(names) == 0 {
		return ""
	}
	if target == "" {
		return names[0]
	}

	best := names[0]
	bestDist := distance(names[0], target)
	for _, n := range names[1:] {
		if d := distance(n, target); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// FindSimilarNameFromMap is FindSimilarName over a map's keys.
func FindSimilarNameFromMap[V any](names map[string]V, target string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	return FindSimilarName(keys, target)
}
