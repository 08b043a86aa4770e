// Package normalize cleans raw adapter text before classification: markup
// removal, whitespace collapsing, and boundary-aware truncation.
package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxDescriptionLen bounds descriptions entering the pipeline.
	MaxDescriptionLen = 500

	// MaxTitleLen bounds titles entering the pipeline.
	MaxTitleLen = 200

	// sentenceBoundaryFraction is the minimum share of the budget a sentence
	// boundary must cover before we prefer cutting there.
	sentenceBoundaryFraction = 0.6

	ellipsis = "..."
)

// CleanHTML strips markup from text and collapses whitespace. Plain text
// passes through with whitespace collapsed only.
func CleanHTML(text string) string {
	if text == "" {
		return ""
	}
	if !strings.Contains(text, "<") {
		return Collapse(text)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		// Unparseable fragments fall back to a raw tag strip.
		return Collapse(stripTags(text))
	}
	return Collapse(doc.Text())
}

// Collapse trims and folds all runs of whitespace into single spaces.
func Collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate shortens text to at most maxLen runes, preferring to cut at the
// last sentence boundary when it falls past sentenceBoundaryFraction of the
// budget, then at the last word boundary, then hard with an ellipsis.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxLen])

	minSentence := int(float64(maxLen) * sentenceBoundaryFraction)
	if idx := lastSentenceBoundary(cut); idx >= minSentence {
		return strings.TrimSpace(cut[:idx])
	}

	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return strings.TrimSpace(cut[:idx]) + ellipsis
	}

	return cut + ellipsis
}

// Description runs the full normalization for descriptions.
func Description(text string) string {
	return Truncate(CleanHTML(text), MaxDescriptionLen)
}

// Title runs the full normalization for titles.
func Title(text string) string {
	return Truncate(CleanHTML(text), MaxTitleLen)
}

// lastSentenceBoundary returns the byte index just after the last terminator
// (".", "!", "?") that is followed by a space, or -1 when absent.
func lastSentenceBoundary(s string) int {
	best := -1
	for _, term := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(s, term); idx >= 0 && idx+1 > best {
			best = idx + 1
		}
	}
	return best
}

// stripTags removes anything between angle brackets. Last-resort cleaner for
// fragments goquery refuses to parse.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
