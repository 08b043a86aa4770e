// Package keywords derives a frequency-ranked token summary from the final
// trend set, used downstream for theming and image search.
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fubak/cmmcwatch/internal/trend"
)

// DefaultLimit caps the global keyword list.
const DefaultLimit = 100

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"will": {}, "what": {}, "when": {}, "where": {}, "their": {}, "there": {},
	"about": {}, "after": {}, "says": {}, "into": {}, "over": {}, "more": {},
	"than": {}, "your": {},
}

// Top tokenizes titles and descriptions across the batch, case-folds, drops
// stopwords and returns up to limit tokens ordered by descending frequency.
// Ties are broken alphabetically so the output is deterministic.
func Top(batch []trend.Trend, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	counts := make(map[string]int)
	for _, t := range batch {
		text := strings.ToLower(t.Title + " " + t.Description)
		for _, word := range wordPattern.FindAllString(text, -1) {
			if _, stop := stopwords[word]; stop {
				continue
			}
			counts[word]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}
