// Package dedup removes exact and near-duplicate trends from a batch.
//
// Near-duplicate detection compares normalized titles pairwise against every
// previously accepted title; the scan is quadratic in batch size, which is
// fine for the tens-to-low-hundreds of records a run produces.
package dedup

import (
	"strings"
	"unicode"

	"github.com/fubak/cmmcwatch/internal/trend"
)

const (
	// DefaultThreshold is the similarity ratio above which two titles count
	// as duplicates. No derived rationale; tuned value carried from config.
	DefaultThreshold = 0.8

	// DefaultTokenWindow bounds the comparison to the title lead, which
	// carries the most distinguishing content.
	DefaultTokenWindow = 10
)

// Deduper filters a batch keeping the first-seen record of every duplicate
// group. The result depends on input order; that is an accepted property of
// the algorithm, not a bug.
type Deduper struct {
	sim         TextSimilarity
	threshold   float64
	tokenWindow int
}

func New(sim TextSimilarity, threshold float64, tokenWindow int) *Deduper {
	if sim == nil {
		sim = TokenSequenceSimilarity{}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if tokenWindow <= 0 {
		tokenWindow = DefaultTokenWindow
	}
	return &Deduper{sim: sim, threshold: threshold, tokenWindow: tokenWindow}
}

// Filter splits the batch into kept records and rejected duplicates. URLs are
// the natural key: a repeated non-empty URL is always a duplicate. Titles are
// then compared by similarity ratio against every already-accepted title.
func (d *Deduper) Filter(batch []trend.Trend) (kept, rejected []trend.Trend) {
	if len(batch) < 2 {
		return batch, nil
	}

	seenURLs := make(map[string]struct{}, len(batch))
	var seenTitles []string

	for _, t := range batch {
		if t.URL != "" {
			if _, dup := seenURLs[t.URL]; dup {
				rejected = append(rejected, t.Reject("duplicate url"))
				continue
			}
		}

		normalized := NormalizeTitle(t.Title, d.tokenWindow)
		if match, dup := d.findSimilar(normalized, seenTitles); dup {
			rejected = append(rejected, t.Reject("duplicate of: "+clip(match, 50)))
			continue
		}

		if t.URL != "" {
			seenURLs[t.URL] = struct{}{}
		}
		seenTitles = append(seenTitles, normalized)
		kept = append(kept, t)
	}

	return kept, rejected
}

func (d *Deduper) findSimilar(normalized string, seen []string) (string, bool) {
	for _, s := range seen {
		if d.sim.Ratio(normalized, s) > d.threshold {
			return s, true
		}
	}
	return "", false
}

// NormalizeTitle lowercases, strips punctuation and keeps only the first
// window tokens of a title.
func NormalizeTitle(title string, window int) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	if len(tokens) > window {
		tokens = tokens[:window]
	}
	return strings.Join(tokens, " ")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
