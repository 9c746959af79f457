// Package similartext renders a "did you mean X?" suggestion suffix for
// schema errors (unknown label, relationship type, or property), adapted
// from the teacher's identically-named helper that does the same for
// unknown table/column names.
package similartext

import (
	"sort"
	"strings"

	"github.com/brahmand-sql/cyphersql/internal/text_distance"
)

func maxAllowedDistance(target string) int {
	if len(target)/2 > 3 {
		return len(target) / 2
	}
	return 3
}

// Find returns ", maybe you mean X?" (or "X or Y?" when several names tie
// for closest) for the nearest entries in names to target, or "" if target
// is empty, names is empty, or nothing in names is close enough to be a
// plausible typo.
func Find(names []string, target string) string {
	if target == "" || len(names) == 0 {
		return ""
	}

	type scored struct {
		name string
		dist int
	}
	scoredNames := make([]scored, len(names))
	best := -1
	for i, n := range names {
		d := editDistance(n, target)
		scoredNames[i] = scored{n, d}
		if best == -1 || d < best {
			best = d
		}
	}
	if best > maxAllowedDistance(target) {
		return ""
	}

	var candidates []string
	for _, s := range scoredNames {
		if s.dist == best {
			candidates = append(candidates, s.name)
		}
	}
	sort.Strings(candidates)

	return ", maybe you mean " + joinWithOr(candidates) + "?"
}

// FindFromMap is Find over a map's keys.
func FindFromMap[V any](names map[string]V, target string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	return Find(keys, target)
}

func joinWithOr(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

func editDistance(a, b string) int {
	return text_distance.Distance(a, b)
}
