// Package classify assigns a category and relevance score to a trend by
// priority-ordered keyword matching.
package classify

import (
	"strings"

	"github.com/fubak/cmmcwatch/internal/trend"
)

// Rule is one category definition: the keyword set that votes for the
// category and the per-match score increment.
type Rule struct {
	Category trend.Category
	Keywords []string
	Weight   float64
}

// Classifier applies an ordered rule list. The first rule with any keyword
// present in the text wins; rule order is the tie-break.
type Classifier struct {
	rules    []Rule
	fallback trend.Category
	base     float64
	cap      float64
}

func New(rules []Rule, fallback trend.Category, base, cap float64) *Classifier {
	return &Classifier{
		rules:    rules,
		fallback: fallback,
		base:     base,
		cap:      cap,
	}
}

// Classify returns the category for a title/description pair.
func (c *Classifier) Classify(title, description string) trend.Category {
	content := strings.ToLower(title + " " + description)
	for _, rule := range c.rules {
		if containsAny(content, rule.Keywords) {
			return rule.Category
		}
	}
	return c.fallback
}

// Score computes the relevance score: the base value plus each rule's weight
// per matched keyword from that rule, capped. Scoring counts matches across
// all rules regardless of which category won.
func (c *Classifier) Score(title, description string) float64 {
	content := strings.ToLower(title + " " + description)
	score := c.base
	for _, rule := range c.rules {
		score += float64(countMatches(content, rule.Keywords)) * rule.Weight
	}
	if score > c.cap {
		score = c.cap
	}
	if score < 0 {
		score = 0
	}
	return score
}

// MatchedKeywords lists every configured keyword present in the text, in
// rule order. Used to fill the trend's keyword set.
func (c *Classifier) MatchedKeywords(title, description string) []string {
	content := strings.ToLower(title + " " + description)
	var matched []string
	seen := make(map[string]struct{})
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			k := strings.ToLower(kw)
			if _, dup := seen[k]; dup {
				continue
			}
			if strings.Contains(content, k) {
				matched = append(matched, k)
				seen[k] = struct{}{}
			}
		}
	}
	return matched
}

// Apply sets category, score and matched keywords on the trend in place.
// Calling it twice on the same input yields identical results.
func (c *Classifier) Apply(t *trend.Trend) {
	t.Category = c.Classify(t.Title, t.Description)
	t.Score = c.Score(t.Title, t.Description)
	t.Keywords = c.MatchedKeywords(t.Title, t.Description)
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(content, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func countMatches(content string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(content, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
