package dedup

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TextSimilarity scores how alike two normalized titles are, in [0, 1].
// Isolated behind an interface so the comparator can be swapped without
// touching pipeline logic.
type TextSimilarity interface {
	Ratio(a, b string) float64
}

// TokenSequenceSimilarity compares titles as token sequences using the
// difflib sequence matcher.
type TokenSequenceSimilarity struct{}

func (TokenSequenceSimilarity) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	m := difflib.NewMatcher(strings.Fields(a), strings.Fields(b))
	return m.Ratio()
}
