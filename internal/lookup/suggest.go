package lookup

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestions = 3

// Suggest ranks candidates that resemble value. Subsequence matches come
// first; typos that break the subsequence fall back to edit distance.
func Suggest(value string, candidates []string) []string {
	if value == "" || len(candidates) == 0 {
		return nil
	}

	matches := fuzzy.RankFindFold(value, candidates)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	out := make([]string, 0, maxSuggestions)
	seen := map[string]struct{}{}
	for _, match := range matches {
		if len(out) == maxSuggestions {
			return out
		}
		if _, ok := seen[match.Target]; ok {
			continue
		}
		seen[match.Target] = struct{}{}
		out = append(out, match.Target)
	}

	type scored struct {
		name     string
		distance int
	}
	limit := len(value) / 3
	if limit < 2 {
		limit = 2
	}
	var near []scored
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		if d := fuzzy.LevenshteinDistance(fold(value), fold(candidate)); d <= limit {
			near = append(near, scored{name: candidate, distance: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].distance < near[j].distance })
	for _, n := range near {
		if len(out) == maxSuggestions {
			break
		}
		seen[n.name] = struct{}{}
		out = append(out, n.name)
	}
	return out
}
