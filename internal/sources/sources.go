// Package sources contains the collection adapters: RSS feeds, Reddit
// communities, and curated LinkedIn profiles. Each adapter returns raw
// candidate records; classification, scoring and filtering happen downstream.
//
// Adapters isolate failures per feed or profile: one broken endpoint costs
// its own items, never the run.
package sources

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

const userAgent = "Mozilla/5.0 (compatible; CMMCWatch/1.0)"

func matchesAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// extractImage pulls an image URL out of a feed entry, preferring media
// extensions over plain enclosures.
func extractImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			medium := ext.Attrs["medium"]
			mimeType := ext.Attrs["type"]
			if medium == "image" || strings.HasPrefix(mimeType, "image") {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
		for _, ext := range media["thumbnail"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	return ""
}
